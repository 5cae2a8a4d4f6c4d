package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewAndParsePayload(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	ev, err := New(id, EventTypeRoundResumed, at, RoundResumedPayload{
		SessionID:      id.String(),
		Counter:        3,
		CompensatedSec: 4,
		ResumedAt:      at,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ev.SessionID != id.String() || ev.Type != EventTypeRoundResumed || !ev.Timestamp.Equal(at) {
		t.Fatalf("unexpected envelope: %+v", ev)
	}
	if _, err := uuid.Parse(ev.ID); err != nil {
		t.Errorf("event id is not a uuid: %v", err)
	}

	payload, err := ParsePayload(ev)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	resumed, ok := payload.(*RoundResumedPayload)
	if !ok {
		t.Fatalf("expected *RoundResumedPayload, got %T", payload)
	}
	if resumed.Counter != 3 || resumed.CompensatedSec != 4 {
		t.Errorf("unexpected payload: %+v", resumed)
	}
}

func TestParsePayloadUnknownType(t *testing.T) {
	_, err := ParsePayload(&Event{Type: "Nope", Data: []byte(`{}`)})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}
