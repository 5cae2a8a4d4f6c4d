package events

import (
	"time"
)

// Payload types shared by the game runtime, the publisher and the gateway

// SessionCreatedPayload is the payload for a SessionCreated event
type SessionCreatedPayload struct {
	SessionID string    `json:"session_id"`
	Seed      int       `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

// RoundStartedPayload is the payload for a RoundStarted event
type RoundStartedPayload struct {
	SessionID string    `json:"session_id"`
	Seed      int       `json:"seed"`
	Restart   bool      `json:"restart"`
	StartedAt time.Time `json:"started_at"`
}

// RoundTickedPayload is the payload for a RoundTicked event
type RoundTickedPayload struct {
	SessionID string    `json:"session_id"`
	Counter   int       `json:"counter"`
	TickedAt  time.Time `json:"ticked_at"`
}

// RoundPausedPayload is the payload for a RoundPaused event
type RoundPausedPayload struct {
	SessionID string    `json:"session_id"`
	Counter   int       `json:"counter"`
	PausedAt  time.Time `json:"paused_at"`
}

// RoundResumedPayload is the payload for a RoundResumed event
type RoundResumedPayload struct {
	SessionID      string    `json:"session_id"`
	Counter        int       `json:"counter"`
	CompensatedSec int       `json:"compensated_sec"`
	ResumedAt      time.Time `json:"resumed_at"`
}

// RoundEndedPayload is the payload for a RoundEnded event
type RoundEndedPayload struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Duration  string    `json:"duration"`
}

// ErrorPayload is sent to a client whose request could not be applied
type ErrorPayload struct {
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}
