package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/mcdev12/timerball/go/internal/scene"
	"github.com/mcdev12/timerball/go/internal/session"
	"gopkg.in/yaml.v3"
)

// Game is the tuning file:
//
//	arena: {width: 800, height: 600}
//	ball:
//	  start: {x: 400, y: 300}
//	  velocity: {x: 400, y: 500}
//	  radius: 16
//	seed: {min: 30, max: 120}
//	frame_rate: 20
//	tick_interval: 1s
type Game struct {
	Arena        scene.Bounds      `yaml:"arena"`
	Ball         Ball              `yaml:"ball"`
	Seed         session.SeedRange `yaml:"seed"`
	FrameRate    int               `yaml:"frame_rate"`
	TickInterval time.Duration     `yaml:"tick_interval"`
}

type Ball struct {
	Start    scene.Vec `yaml:"start"`
	Velocity scene.Vec `yaml:"velocity"`
	Radius   float64   `yaml:"radius"`
}

// DefaultGame mirrors the runtime defaults
func DefaultGame() Game {
	sc := scene.DefaultConfig()
	gc := game.DefaultConfig()
	return Game{
		Arena: sc.Bounds,
		Ball: Ball{
			Start:    sc.Start,
			Velocity: sc.Velocity,
			Radius:   sc.Radius,
		},
		Seed:         session.DefaultSeedRange(),
		FrameRate:    int(time.Second / gc.FrameInterval),
		TickInterval: gc.TickInterval,
	}
}

// LoadGame reads the tuning file at path over the defaults. An empty path
// returns the defaults.
func LoadGame(path string) (Game, error) {
	cfg := DefaultGame()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Game{}, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Game{}, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Game{}, fmt.Errorf("invalid game config %s: %w", path, err)
	}
	return cfg, nil
}

func (g Game) Validate() error {
	if g.FrameRate <= 0 || g.FrameRate > 240 {
		return fmt.Errorf("frame_rate must be between 1 and 240, got %d", g.FrameRate)
	}
	if err := g.Seed.Validate(); err != nil {
		return err
	}
	return g.Runtime().Validate()
}

// Runtime converts the file into the runner tuning
func (g Game) Runtime() game.Config {
	cfg := game.Config{
		TickInterval: g.TickInterval,
		Scene: scene.Config{
			Bounds:   g.Arena,
			Start:    g.Ball.Start,
			Velocity: g.Ball.Velocity,
			Radius:   g.Ball.Radius,
		},
	}
	if g.FrameRate > 0 {
		cfg.FrameInterval = time.Second / time.Duration(g.FrameRate)
	}
	return cfg
}
