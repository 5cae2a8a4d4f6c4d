package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/events"
	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/mcdev12/timerball/go/internal/models"
	"github.com/mcdev12/timerball/go/internal/scene"
	"github.com/rs/zerolog/log"
)

// SessionsRepository defines what the app layer needs from the registry
type SessionsRepository interface {
	Create() models.Session
	Get(id uuid.UUID) (models.Session, error)
	List() []models.Session
	Delete(id uuid.UUID) error
}

// RoundController drives the live round of each session
type RoundController interface {
	Spawn(id uuid.UUID, seed int) error
	Start(ctx context.Context, id uuid.UUID, seed int) (scene.Snapshot, error)
	Restart(ctx context.Context, id uuid.UUID, seed int) (scene.Snapshot, error)
	Pause(ctx context.Context, id uuid.UUID) (scene.Snapshot, error)
	Resume(ctx context.Context, id uuid.UUID) (scene.Snapshot, error)
	Snapshot(ctx context.Context, id uuid.UUID) (scene.Snapshot, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// EventPublisher ships lifecycle events off the process
type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

// App handles session business logic
type App struct {
	repo      SessionsRepository
	rounds    RoundController
	publisher EventPublisher
	clock     clockwork.Clock
}

// NewApp creates a new session App. publisher may be nil.
func NewApp(repo SessionsRepository, rounds RoundController, publisher EventPublisher, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		rounds:    rounds,
		publisher: publisher,
		clock:     clock,
	}
}

// CreateSession registers a session and spawns its runner
func (a *App) CreateSession(ctx context.Context) (*models.Session, error) {
	sess := a.repo.Create()

	if err := a.rounds.Spawn(sess.ID, sess.Seed); err != nil {
		if delErr := a.repo.Delete(sess.ID); delErr != nil {
			log.Warn().Err(delErr).Str("session_id", sess.ID.String()).Msg("failed to drop session after spawn error")
		}
		return nil, fmt.Errorf("failed to spawn runner: %w", err)
	}

	if a.publisher != nil {
		ev, err := events.New(sess.ID, events.EventTypeSessionCreated, a.clock.Now(), events.SessionCreatedPayload{
			SessionID: sess.ID.String(),
			Seed:      sess.Seed,
			CreatedAt: sess.CreatedAt,
		})
		if err == nil {
			err = a.publisher.Publish(ctx, ev)
		}
		if err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("failed to publish session created")
		}
	}

	log.Info().
		Str("session_id", sess.ID.String()).
		Int("seed", sess.Seed).
		Msg("created session")
	return &sess, nil
}

// ListSessions returns every session in creation order
func (a *App) ListSessions(ctx context.Context) ([]models.Session, error) {
	return a.repo.List(), nil
}

// GetSession returns a session and the current state of its round
func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	sess, err := a.repo.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	snap, err := a.rounds.Snapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &SessionView{Session: sess, Snapshot: snap}, nil
}

// DeleteSession stops the session's runner and drops it from the registry
func (a *App) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := a.repo.Get(id); err != nil {
		return err
	}
	if err := a.rounds.Remove(ctx, id); err != nil && !errors.Is(err, game.ErrRunnerNotFound) {
		return fmt.Errorf("failed to stop runner: %w", err)
	}
	if err := a.repo.Delete(id); err != nil {
		return err
	}

	log.Info().Str("session_id", id.String()).Msg("deleted session")
	return nil
}

// StartRound starts the session's round. A nil seed uses the session's seed.
func (a *App) StartRound(ctx context.Context, id uuid.UUID, seed *int) (*scene.Snapshot, error) {
	s, err := a.resolveSeed(id, seed)
	if err != nil {
		return nil, err
	}
	snap, err := a.rounds.Start(ctx, id, s)
	if err != nil {
		return nil, fmt.Errorf("failed to start round: %w", err)
	}
	return &snap, nil
}

// RestartRound starts a fresh round once the previous one ended
func (a *App) RestartRound(ctx context.Context, id uuid.UUID, seed *int) (*scene.Snapshot, error) {
	s, err := a.resolveSeed(id, seed)
	if err != nil {
		return nil, err
	}
	snap, err := a.rounds.Restart(ctx, id, s)
	if err != nil {
		return nil, fmt.Errorf("failed to restart round: %w", err)
	}
	return &snap, nil
}

// PauseRound suspends the countdown, as when the surface goes to the background
func (a *App) PauseRound(ctx context.Context, id uuid.UUID) (*scene.Snapshot, error) {
	if _, err := a.repo.Get(id); err != nil {
		return nil, err
	}
	snap, err := a.rounds.Pause(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to pause round: %w", err)
	}
	return &snap, nil
}

// ResumeRound continues the countdown, charging the time spent paused
func (a *App) ResumeRound(ctx context.Context, id uuid.UUID) (*scene.Snapshot, error) {
	if _, err := a.repo.Get(id); err != nil {
		return nil, err
	}
	snap, err := a.rounds.Resume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resume round: %w", err)
	}
	return &snap, nil
}

func (a *App) resolveSeed(id uuid.UUID, seed *int) (int, error) {
	sess, err := a.repo.Get(id)
	if err != nil {
		return 0, err
	}
	if seed != nil {
		return *seed, nil
	}
	return sess.Seed, nil
}
