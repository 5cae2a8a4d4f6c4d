package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/models"
)

// ErrSessionNotFound is returned for ids the registry has never issued
var ErrSessionNotFound = errors.New("session not found")

// SeedRange bounds the countdown seed drawn for new sessions
type SeedRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultSeedRange draws seeds between 30 and 120 seconds
func DefaultSeedRange() SeedRange {
	return SeedRange{Min: 30, Max: 120}
}

// Validate checks the range is usable
func (r SeedRange) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("seed min must not be negative, got %d", r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("seed max %d below min %d", r.Max, r.Min)
	}
	return nil
}

// Registry holds every session in creation order. It is the only state
// shared across sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
	order    []uuid.UUID

	clock clockwork.Clock
	seeds SeedRange
	intN  func(n int) int
}

// NewRegistry creates an empty registry
func NewRegistry(clock clockwork.Clock, seeds SeedRange) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*models.Session),
		clock:    clock,
		seeds:    seeds,
		intN:     rand.IntN,
	}
}

// Create registers a session with a freshly drawn seed
func (r *Registry) Create() models.Session {
	sess := &models.Session{
		ID:        uuid.New(),
		Seed:      r.seeds.Min + r.intN(r.seeds.Max-r.seeds.Min+1),
		CreatedAt: r.clock.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
	r.order = append(r.order, sess.ID)
	return sess.Clone()
}

// Get returns a copy of the session
func (r *Registry) Get(id uuid.UUID) (models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.Clone(), nil
}

// Delete drops a session from the registry
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns copies of all sessions, oldest first
func (r *Registry) List() []models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sessions[id].Clone())
	}
	return out
}

// RecordStart marks a new round as started with the given seed. A finished
// round still on the session is archived first.
func (r *Registry) RecordStart(id uuid.UUID, seed int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if sess.StartTime != nil && sess.EndTime != nil {
		sess.Rounds = append(sess.Rounds, models.RoundRecord{
			Seed:      sess.Seed,
			StartTime: *sess.StartTime,
			EndTime:   *sess.EndTime,
		})
	}
	sess.Seed = seed
	sess.StartTime = &at
	sess.EndTime = nil
	return nil
}

// RecordEnd sets the end time of the current round unless one is already
// set. It reports whether this call recorded it.
func (r *Registry) RecordEnd(id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.EndTime != nil {
		return false, nil
	}
	sess.EndTime = &at
	return true, nil
}

// Len returns the number of sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
