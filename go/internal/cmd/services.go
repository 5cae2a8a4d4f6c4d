package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/config"
	"github.com/mcdev12/timerball/go/internal/game"
	"github.com/mcdev12/timerball/go/internal/gateway"
	"github.com/mcdev12/timerball/go/internal/publisher"
	"github.com/mcdev12/timerball/go/internal/session"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Registry *session.Registry
	Manager  *game.Manager
	Sessions *session.Service
	Gateway  *gateway.Service
	Events   *publisher.AsyncPublisher
	Metrics  *publisher.InMemoryMetrics
	Health   *publisher.HealthChecker

	bus            *publisher.NATSPublisher
	roundsFinished atomic.Int64
}

func setupServices(ctx context.Context, srv config.Server, tuning config.Game, clock clockwork.Clock) (*Services, error) {
	// Wire up dependency injection chain
	// Event sink → Metrics → Async queue → Runners → App → Service layers

	var (
		sink publisher.EventPublisher = publisher.NewLogPublisher()
		conn publisher.Connectivity
		bus  *publisher.NATSPublisher
	)
	if srv.NATSEnabled {
		var err error
		bus, err = publisher.NewNATSPublisher(ctx, srv.JetStream())
		if err != nil {
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		sink, conn = bus, bus
	}

	s := &Services{bus: bus}

	metrics := publisher.NewInMemoryMetrics(clock)
	events := publisher.NewAsyncPublisher(
		publisher.NewMetricPublisher(sink, metrics, clock),
		srv.Async(),
		clock,
		metrics,
	)

	registry := session.NewRegistry(clock, tuning.Seed)

	// Runners report to the connection manager, which exists before the
	// app that drives them
	connections := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	manager := game.NewManager(tuning.Runtime(), game.Deps{
		Clock:      clock,
		Recorder:   registry,
		Publisher:  events,
		Observer:   connections,
		OnRoundEnd: s.roundEnded,
	})

	app := session.NewApp(registry, manager, events, clock)
	gw := gateway.NewService(connections, app)
	gw.AddStats("publisher", func() any { return metrics.Stats() })
	gw.AddStats("sessions", func() any {
		return map[string]int64{
			"registered":      int64(registry.Len()),
			"runners":         int64(manager.Len()),
			"rounds_finished": s.roundsFinished.Load(),
		}
	})

	s.Registry = registry
	s.Manager = manager
	s.Sessions = session.NewService(app)
	s.Gateway = gw
	s.Events = events
	s.Metrics = metrics
	s.Health = publisher.NewHealthChecker(conn, metrics)
	return s, nil
}

// Start runs the background workers. The gateway stops with ctx; the event
// queue keeps running until Shutdown drains it.
func (s *Services) Start(ctx context.Context) error {
	if err := s.Events.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to start event publisher: %w", err)
	}
	go s.Gateway.Start(ctx)
	return nil
}

// Shutdown stops the runners first so their final events are queued, then
// flushes the queue and closes the bus.
func (s *Services) Shutdown(ctx context.Context) {
	if err := s.Manager.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("runner shutdown failed")
	}
	if err := s.Events.Stop(); err != nil {
		log.Error().Err(err).Msg("event publisher shutdown failed")
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event bus")
		}
	}
}

func (s *Services) roundEnded(sessionID uuid.UUID, endTime time.Time) {
	n := s.roundsFinished.Add(1)
	log.Debug().
		Str("session_id", sessionID.String()).
		Time("end_time", endTime).
		Int64("rounds_finished", n).
		Msg("round finished")
}
