package scene

import (
	"fmt"
	"time"

	"github.com/mcdev12/timerball/go/internal/round"
)

const (
	// GameOverText is shown on the status label once a round ends
	GameOverText = "Game Over"
	// CounterPrefix is prepended to the countdown on the counter label
	CounterPrefix = "Counter: "
)

// Cue is the audio cue played on every tick
type Cue interface {
	Play()
	Stop()
}

// NopCue is a silent Cue
type NopCue struct{}

func (NopCue) Play() {}
func (NopCue) Stop() {}

// Config describes the arena and the body's initial motion
type Config struct {
	Bounds   Bounds  `yaml:"bounds"`
	Start    Vec     `yaml:"start"`
	Velocity Vec     `yaml:"velocity"`
	Radius   float64 `yaml:"radius"`
}

// DefaultConfig returns an 800x600 arena with the ball launched from the centre
func DefaultConfig() Config {
	return Config{
		Bounds:   Bounds{Width: 800, Height: 600},
		Start:    Vec{X: 400, Y: 300},
		Velocity: Vec{X: 400, Y: 500},
		Radius:   16,
	}
}

// Validate checks that the body fits in the arena and starts inside it
func (c Config) Validate() error {
	if c.Radius < 0 {
		return fmt.Errorf("radius must not be negative")
	}
	if c.Bounds.Width <= 2*c.Radius || c.Bounds.Height <= 2*c.Radius {
		return fmt.Errorf("arena %.0fx%.0f too small for radius %.1f", c.Bounds.Width, c.Bounds.Height, c.Radius)
	}
	if c.Start.X < c.Radius || c.Start.X > c.Bounds.Width-c.Radius ||
		c.Start.Y < c.Radius || c.Start.Y > c.Bounds.Height-c.Radius {
		return fmt.Errorf("start position (%.0f,%.0f) outside arena", c.Start.X, c.Start.Y)
	}
	return nil
}

// Scene binds one round to a renderable surface: a moving body, a counter
// label, a status label, a restart control and a tick cue.
type Scene struct {
	sessionID string
	seed      int
	cfg       Config
	cue       Cue

	round round.Round

	// body stays nil until the surface is attached and a round has started
	attached bool
	body     *Body

	statusLabel    string
	restartVisible bool
	cueSeq         uint64
}

// New creates a scene for a session. seed is shown on the counter label
// until the first round starts; afterwards the scene reports the seed of
// the latest round.
func New(sessionID string, seed int, cfg Config, cue Cue) *Scene {
	if cue == nil {
		cue = NopCue{}
	}
	return &Scene{
		sessionID: sessionID,
		seed:      seed,
		cfg:       cfg,
		cue:       cue,
		round:     round.New(),
	}
}

// Attach marks the surface as ready for drawing. A body requested before
// this point is created now.
func (s *Scene) Attach() {
	if s.attached {
		return
	}
	s.attached = true

	switch s.round.Phase {
	case round.PhaseRunning, round.PhasePaused:
		s.resetBody()
	case round.PhaseEnded:
		s.resetBody()
		s.body.Freeze()
	}
}

// Attached reports whether the first frame has happened
func (s *Scene) Attached() bool {
	return s.attached
}

// Apply feeds an event into the round and renders every resulting effect.
// On error nothing in the scene changes.
func (s *Scene) Apply(ev round.Event) ([]round.Effect, error) {
	next, effects, err := round.Apply(s.round, ev)
	if err != nil {
		return nil, err
	}
	s.round = next

	for _, effect := range effects {
		switch effect.Type {
		case round.EffectStarted:
			s.seed = next.Seed
			s.resetBody()
			s.statusLabel = ""
			s.restartVisible = false
		case round.EffectTicked:
			s.cue.Play()
			s.cueSeq++
		case round.EffectCueStopped:
			s.cue.Stop()
		case round.EffectBodyFrozen:
			if s.body != nil {
				s.body.Freeze()
			}
		case round.EffectGameOver:
			s.statusLabel = GameOverText
			s.restartVisible = true
		}
	}
	return effects, nil
}

// Step advances the body while the round is running
func (s *Scene) Step(dt time.Duration) {
	if s.body == nil || s.round.Phase != round.PhaseRunning {
		return
	}
	s.body.Step(dt, s.cfg.Bounds)
}

// Round returns the current round value
func (s *Scene) Round() round.Round {
	return s.round
}

// Close silences the cue
func (s *Scene) Close() {
	s.cue.Stop()
}

// resetBody puts the body back at its launch position, in place when it
// already exists. Before attach the reset is deferred to Attach.
func (s *Scene) resetBody() {
	if !s.attached {
		return
	}
	if s.body == nil {
		s.body = &Body{Radius: s.cfg.Radius}
	}
	s.body.Pos = s.cfg.Start
	s.body.Vel = s.cfg.Velocity
}
