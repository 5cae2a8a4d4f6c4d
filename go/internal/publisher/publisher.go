package publisher

import (
	"context"
	"errors"

	"github.com/mcdev12/timerball/go/internal/events"
	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when an event is dropped because the async queue is full
var ErrQueueFull = errors.New("publish queue full")

// EventPublisher ships a lifecycle event to its destination
type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event *events.Event) error {
	log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("session_id", event.SessionID).
		Time("timestamp", event.Timestamp).
		RawJSON("data", event.Data).
		Msg("publishing event")
	return nil
}
