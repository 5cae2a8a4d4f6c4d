package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/round"
)

func TestManagerLifecycle(t *testing.T) {
	clock := &countingClock{FakeClock: clockwork.NewFakeClockAt(epoch)}
	m := NewManager(DefaultConfig(), Deps{Clock: clock})

	a, b := uuid.New(), uuid.New()
	if err := m.Spawn(a, 40); err != nil {
		t.Fatalf("spawn a: %v", err)
	}
	if err := m.Spawn(b, 50); err != nil {
		t.Fatalf("spawn b: %v", err)
	}
	if err := m.Spawn(a, 40); err == nil {
		t.Error("expected duplicate spawn to fail")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 runners, got %d", m.Len())
	}

	ctx := context.Background()
	snap, err := m.Snapshot(ctx, b)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Phase != round.PhaseIdle || snap.CounterLabel != "Counter: 50" {
		t.Errorf("unexpected idle snapshot %+v", snap)
	}

	snap, err = m.Start(ctx, a, 40)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Phase != round.PhaseRunning {
		t.Errorf("expected running, got %s", snap.Phase)
	}

	if _, err := m.Pause(ctx, uuid.New()); !errors.Is(err, ErrRunnerNotFound) {
		t.Errorf("expected ErrRunnerNotFound, got %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := m.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := clock.active.Load(); got != 0 {
		t.Errorf("expected every ticker stopped after shutdown, %d alive", got)
	}
	if err := m.Spawn(uuid.New(), 30); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("expected ErrManagerClosed, got %v", err)
	}
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(DefaultConfig(), Deps{Clock: clockwork.NewFakeClockAt(epoch)})
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	id := uuid.New()
	if err := m.Spawn(id, 30); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	r, err := m.Runner(id)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	select {
	case <-r.Done():
	default:
		t.Error("runner still running after remove")
	}
	if _, err := m.Runner(id); !errors.Is(err, ErrRunnerNotFound) {
		t.Errorf("expected ErrRunnerNotFound after remove, got %v", err)
	}
}
