package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mcdev12/timerball/go/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(level zerolog.Level) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(level)
}

func loadConfig() (config.Server, config.Game, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	srv, err := config.LoadServer()
	if err != nil {
		return config.Server{}, config.Game{}, err
	}
	tuning, err := config.LoadGame(srv.GameConfig)
	if err != nil {
		return config.Server{}, config.Game{}, err
	}
	return srv, tuning, nil
}
