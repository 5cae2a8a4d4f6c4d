package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/mcdev12/timerball/go/internal/round"
)

type recordingCue struct {
	plays int
	stops int
}

func (c *recordingCue) Play() { c.plays++ }
func (c *recordingCue) Stop() { c.stops++ }

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestScene(seed int) (*Scene, *recordingCue) {
	cue := &recordingCue{}
	return New("session-1", seed, DefaultConfig(), cue), cue
}

func TestSceneIdleSnapshot(t *testing.T) {
	s, _ := newTestScene(45)
	snap := s.Snapshot()

	if snap.Phase != round.PhaseIdle {
		t.Errorf("expected idle phase, got %s", snap.Phase)
	}
	if snap.CounterLabel != "Counter: 45" {
		t.Errorf("expected seed on counter label, got %q", snap.CounterLabel)
	}
	if !snap.StartEnabled {
		t.Error("expected start to be enabled while idle")
	}
	if snap.Body != nil {
		t.Error("expected no body before attach")
	}
}

func TestSceneStartBeforeAttachDefersBody(t *testing.T) {
	s, _ := newTestScene(5)
	if _, err := s.Apply(round.Start(5, epoch)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Snapshot().Body != nil {
		t.Fatal("body should not exist before the first frame")
	}

	// Stepping without a body is ignored
	s.Step(time.Second)

	s.Attach()
	snap := s.Snapshot()
	if snap.Body == nil {
		t.Fatal("expected body after attach")
	}
	cfg := DefaultConfig()
	if snap.Body.Pos != cfg.Start || snap.Body.Vel != cfg.Velocity {
		t.Errorf("expected body at launch state, got %+v", snap.Body)
	}
}

func TestSceneTicksPlayCueAndEnd(t *testing.T) {
	s, cue := newTestScene(3)
	s.Attach()
	if _, err := s.Apply(round.Start(3, epoch)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Snapshot().StartEnabled {
		t.Error("start must be disabled while running")
	}

	for i := 1; i <= 3; i++ {
		if _, err := s.Apply(round.Tick(epoch.Add(time.Duration(i) * time.Second))); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if cue.plays != 3 {
		t.Errorf("expected cue played 3 times, got %d", cue.plays)
	}
	if cue.stops != 1 {
		t.Errorf("expected cue stopped once, got %d", cue.stops)
	}

	snap := s.Snapshot()
	if snap.StatusLabel != GameOverText {
		t.Errorf("expected %q, got %q", GameOverText, snap.StatusLabel)
	}
	if !snap.RestartVisible {
		t.Error("expected restart control to be visible")
	}
	if snap.Body == nil || snap.Body.Moving() {
		t.Errorf("expected frozen body, got %+v", snap.Body)
	}
	if snap.CounterLabel != "Counter: 0" {
		t.Errorf("expected zero counter label, got %q", snap.CounterLabel)
	}
	if snap.CueSeq != 3 {
		t.Errorf("expected cue sequence 3, got %d", snap.CueSeq)
	}
}

func TestSceneRestartResetsBodyInPlace(t *testing.T) {
	s, _ := newTestScene(1)
	s.Attach()
	if _, err := s.Apply(round.Start(1, epoch)); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Step(250 * time.Millisecond)
	if _, err := s.Apply(round.Tick(epoch.Add(time.Second))); err != nil {
		t.Fatalf("tick: %v", err)
	}
	before := s.body

	if _, err := s.Apply(round.Restart(7, epoch.Add(2*time.Second))); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.body != before {
		t.Error("restart should reuse the existing body")
	}

	snap := s.Snapshot()
	cfg := DefaultConfig()
	if snap.Body.Pos != cfg.Start || snap.Body.Vel != cfg.Velocity {
		t.Errorf("expected body reset to launch state, got %+v", snap.Body)
	}
	if snap.RestartVisible || snap.StatusLabel != "" {
		t.Errorf("expected restart control and status hidden, got %+v", snap)
	}
	if snap.Counter != 7 || snap.Phase != round.PhaseRunning {
		t.Errorf("expected running round with counter 7, got %+v", snap)
	}
	if snap.EndTime != nil {
		t.Error("expected end time cleared")
	}
}

func TestSceneStepOnlyWhileRunning(t *testing.T) {
	s, _ := newTestScene(10)
	s.Attach()
	if _, err := s.Apply(round.Start(10, epoch)); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Step(100 * time.Millisecond)
	moved := s.Snapshot().Body.Pos
	if moved == DefaultConfig().Start {
		t.Fatal("expected body to move while running")
	}

	if _, err := s.Apply(round.Pause(epoch.Add(time.Second))); err != nil {
		t.Fatalf("pause: %v", err)
	}
	s.Step(time.Second)
	if s.Snapshot().Body.Pos != moved {
		t.Error("body moved while paused")
	}
}

func TestSceneRejectedEventChangesNothing(t *testing.T) {
	s, cue := newTestScene(10)
	s.Attach()

	_, err := s.Apply(round.Tick(epoch))
	if !errors.Is(err, round.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if cue.plays != 0 {
		t.Error("cue played for a rejected tick")
	}
	if s.Round().Phase != round.PhaseIdle {
		t.Errorf("expected idle round, got %s", s.Round().Phase)
	}
}

func TestSceneAttachAfterEnd(t *testing.T) {
	s, _ := newTestScene(0)
	if _, err := s.Apply(round.Start(0, epoch)); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Attach()
	snap := s.Snapshot()
	if snap.Body == nil || snap.Body.Moving() {
		t.Errorf("expected frozen body after attach on an ended round, got %+v", snap.Body)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.Start = Vec{X: 5, Y: 5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for start outside arena")
	}

	tiny := DefaultConfig()
	tiny.Bounds = Bounds{Width: 20, Height: 20}
	if err := tiny.Validate(); err == nil {
		t.Error("expected error for arena smaller than the ball")
	}
}

func TestSceneReportsRoundSeed(t *testing.T) {
	s, _ := newTestScene(45)
	if _, err := s.Apply(round.Start(7, epoch)); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := s.Snapshot()
	if snap.Seed != 7 || snap.CounterLabel != "Counter: 7" {
		t.Errorf("expected the started seed, got seed %d label %q", snap.Seed, snap.CounterLabel)
	}
}
