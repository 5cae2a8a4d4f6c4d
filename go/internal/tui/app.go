package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/events"
	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/mcdev12/timerball/go/internal/round"
	"github.com/mcdev12/timerball/go/internal/scene"
	"github.com/mcdev12/timerball/go/internal/session"
	"github.com/rs/zerolog/log"
)

// App plays one local session in the terminal. Losing terminal focus
// pauses the round and regaining it resumes.
type App struct {
	screen   tcell.Screen
	renderer *Renderer
	registry *session.Registry
	runner   *game.Runner
	session  localSession

	snaps chan scene.Snapshot
	last  scene.Snapshot
}

type localSession struct {
	id   uuid.UUID
	seed int
}

// New builds the app around a fresh session whose seed is drawn from seeds
func New(screen tcell.Screen, cfg game.Config, seeds session.SeedRange, cue scene.Cue, clock clockwork.Clock) *App {
	registry := session.NewRegistry(clock, seeds)
	sess := registry.Create()

	a := &App{
		screen:   screen,
		renderer: NewRenderer(screen),
		registry: registry,
		session:  localSession{id: sess.ID, seed: sess.Seed},
		snaps:    make(chan scene.Snapshot, 1),
	}
	a.runner = game.NewRunner(sess.ID, sess.Seed, cfg, cue, game.Deps{
		Clock:    clock,
		Recorder: registry,
		Observer: a,
	})
	return a
}

// Notify receives runner events. Only the latest snapshot is kept.
func (a *App) Notify(_ uuid.UUID, ev *events.Event) {
	if ev.Type != events.EventTypeSnapshot {
		return
	}
	var snap scene.Snapshot
	if err := json.Unmarshal(ev.Data, &snap); err != nil {
		log.Error().Err(err).Msg("failed to decode snapshot")
		return
	}
	for {
		select {
		case a.snaps <- snap:
			return
		default:
		}
		select {
		case <-a.snaps:
		default:
		}
	}
}

// Run drives the screen until the user quits or ctx is cancelled. The
// caller owns the screen and finalises it afterwards.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-a.runner.Done()
	}()
	go a.runner.Run(ctx)

	a.screen.EnableFocus()

	input := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case input <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	snap, err := a.runner.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read initial snapshot: %w", err)
	}
	a.draw(snap)

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-a.snaps:
			a.draw(snap)
		case ev := <-input:
			if !a.handleEvent(ctx, ev) {
				return nil
			}
		}
	}
}

// handleEvent returns false when the app should quit
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 's':
				a.apply(a.runner.Start(ctx, a.session.seed))
			case 'r':
				a.apply(a.runner.Restart(ctx, a.session.seed))
			}
		}

	case *tcell.EventFocus:
		if ev.Focused {
			a.apply(a.runner.Resume(ctx))
		} else {
			a.apply(a.runner.Pause(ctx))
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.draw(a.last)
	}
	return true
}

func (a *App) apply(snap scene.Snapshot, err error) {
	if err != nil {
		if errors.Is(err, round.ErrInvalidTransition) {
			log.Debug().Err(err).Msg("ignored command")
			return
		}
		log.Warn().Err(err).Str("session_id", a.session.id.String()).Msg("command failed")
		return
	}
	a.draw(snap)
}

func (a *App) draw(snap scene.Snapshot) {
	a.last = snap
	a.renderer.Draw(snap, a.footer())
}

func (a *App) footer() string {
	sess, err := a.registry.Get(a.session.id)
	if err != nil {
		return ""
	}
	played := len(sess.Rounds)
	if sess.Ended() {
		played++
	}
	return fmt.Sprintf("seed %d  rounds %d", a.session.seed, played)
}
