package game

import (
	"fmt"
	"time"

	"github.com/mcdev12/timerball/go/internal/scene"
)

// Config tunes every runner a manager spawns
type Config struct {
	// TickInterval is the countdown period
	TickInterval time.Duration
	// FrameInterval is the body integration period
	FrameInterval time.Duration
	Scene         scene.Config
}

// DefaultConfig counts down once per second and steps the body at 20 fps
func DefaultConfig() Config {
	return Config{
		TickInterval:  time.Second,
		FrameInterval: 50 * time.Millisecond,
		Scene:         scene.DefaultConfig(),
	}
}

// Validate checks the intervals and the scene tuning
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", c.FrameInterval)
	}
	if err := c.Scene.Validate(); err != nil {
		return fmt.Errorf("invalid scene config: %w", err)
	}
	return nil
}
