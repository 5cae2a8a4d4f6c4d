package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/timerball/go/internal/scene"
	"github.com/rs/zerolog/log"
)

var (
	// ErrRunnerNotFound is returned for sessions without a runner
	ErrRunnerNotFound = errors.New("runner not found")
	// ErrManagerClosed is returned by Spawn after Shutdown
	ErrManagerClosed = errors.New("manager closed")
)

// Manager owns one runner per session and tears them all down on shutdown
type Manager struct {
	cfg  Config
	deps Deps

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	runners map[uuid.UUID]*managedRunner
	closed  bool
}

type managedRunner struct {
	*Runner
	cancel context.CancelFunc
}

// NewManager creates a manager whose runners report to deps
func NewManager(cfg Config, deps Deps) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:     cfg,
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		runners: make(map[uuid.UUID]*managedRunner),
	}
}

// Spawn starts a runner for a session. The server side never plays audio,
// clients render the cue from RoundTicked events.
func (m *Manager) Spawn(id uuid.UUID, seed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	if _, exists := m.runners[id]; exists {
		return fmt.Errorf("runner for session %s already exists", id)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	r := NewRunner(id, seed, m.cfg, scene.NopCue{}, m.deps)
	m.runners[id] = &managedRunner{Runner: r, cancel: cancel}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		r.Run(ctx)
	}()

	log.Info().
		Str("session_id", id.String()).
		Int("seed", seed).
		Msg("spawned runner")
	return nil
}

// Runner returns the runner for a session
func (m *Manager) Runner(id uuid.UUID) (*Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runners[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunnerNotFound, id)
	}
	return r.Runner, nil
}

// Remove stops a single runner and waits for its loop to exit
func (m *Manager) Remove(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	r, ok := m.runners[id]
	if ok {
		delete(m.runners, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRunnerNotFound, id)
	}

	r.cancel()
	select {
	case <-r.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of live runners
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runners)
}

// Start begins a round on the session's runner
func (m *Manager) Start(ctx context.Context, id uuid.UUID, seed int) (scene.Snapshot, error) {
	r, err := m.Runner(id)
	if err != nil {
		return scene.Snapshot{}, err
	}
	return r.Start(ctx, seed)
}

// Restart begins a new round after the previous one ended
func (m *Manager) Restart(ctx context.Context, id uuid.UUID, seed int) (scene.Snapshot, error) {
	r, err := m.Runner(id)
	if err != nil {
		return scene.Snapshot{}, err
	}
	return r.Restart(ctx, seed)
}

// Pause suspends the session's countdown
func (m *Manager) Pause(ctx context.Context, id uuid.UUID) (scene.Snapshot, error) {
	r, err := m.Runner(id)
	if err != nil {
		return scene.Snapshot{}, err
	}
	return r.Pause(ctx)
}

// Resume continues the session's countdown
func (m *Manager) Resume(ctx context.Context, id uuid.UUID) (scene.Snapshot, error) {
	r, err := m.Runner(id)
	if err != nil {
		return scene.Snapshot{}, err
	}
	return r.Resume(ctx)
}

// Snapshot returns the session's render state
func (m *Manager) Snapshot(ctx context.Context, id uuid.UUID) (scene.Snapshot, error) {
	r, err := m.Runner(id)
	if err != nil {
		return scene.Snapshot{}, err
	}
	return r.Snapshot(ctx)
}

// Shutdown cancels every runner and waits for them to exit
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	count := len(m.runners)
	m.mu.Unlock()

	log.Info().Int("runners", count).Msg("shutting down runners")
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all runners shut down")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for runners: %w", ctx.Err())
	}
}
