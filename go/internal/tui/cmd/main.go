package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/config"
	"github.com/mcdev12/timerball/go/internal/tui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "timerball: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	srv, err := config.LoadServer()
	if err != nil {
		return err
	}
	tuning, err := config.LoadGame(srv.GameConfig)
	if err != nil {
		return err
	}

	// The terminal belongs to the screen, so logs only go to LOG_FILE
	var out io.Writer = io.Discard
	if srv.LogFile != "" {
		f, err := os.OpenFile(srv.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(srv.Level())

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	cue := tui.NewToneCue()
	defer cue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := tui.New(screen, tuning.Runtime(), tuning.Seed, cue, clockwork.NewRealClock())
	return app.Run(ctx)
}
