package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope every lifecycle event travels in, on the bus and
// over websockets.
type Event struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Session UUID
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType names a lifecycle event
type EventType string

const (
	EventTypeSessionCreated EventType = "SessionCreated"
	EventTypeRoundStarted   EventType = "RoundStarted"
	EventTypeRoundTicked    EventType = "RoundTicked"
	EventTypeRoundPaused    EventType = "RoundPaused"
	EventTypeRoundResumed   EventType = "RoundResumed"
	EventTypeRoundEnded     EventType = "RoundEnded"

	// Gateway only
	EventTypeSnapshot EventType = "Snapshot"
	EventTypeError    EventType = "Error"
)

// New wraps a payload in an envelope
func New(sessionID uuid.UUID, typ EventType, at time.Time, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return &Event{
		ID:        uuid.NewString(),
		SessionID: sessionID.String(),
		Type:      typ,
		Timestamp: at,
		Data:      data,
	}, nil
}

// ParsePayload decodes the event data into its payload struct. Snapshot
// events are left to the caller since their shape belongs to the scene.
func ParsePayload(event *Event) (any, error) {
	var payload any
	switch event.Type {
	case EventTypeSessionCreated:
		payload = &SessionCreatedPayload{}
	case EventTypeRoundStarted:
		payload = &RoundStartedPayload{}
	case EventTypeRoundTicked:
		payload = &RoundTickedPayload{}
	case EventTypeRoundPaused:
		payload = &RoundPausedPayload{}
	case EventTypeRoundResumed:
		payload = &RoundResumedPayload{}
	case EventTypeRoundEnded:
		payload = &RoundEndedPayload{}
	case EventTypeError:
		payload = &ErrorPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	if err := json.Unmarshal(event.Data, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
	}
	return payload, nil
}
