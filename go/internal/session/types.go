package session

import (
	"time"

	"github.com/mcdev12/timerball/go/internal/models"
	"github.com/mcdev12/timerball/go/internal/scene"
)

// SessionView pairs a session record with its live round
type SessionView struct {
	Session  models.Session
	Snapshot scene.Snapshot
}

// Wire messages for timerball.v1.SessionService

// SessionMessage is the wire form of a session
type SessionMessage struct {
	ID        string         `json:"id"`
	Seed      int            `json:"seed"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Rounds    []RoundMessage `json:"rounds,omitempty"`
}

// RoundMessage is an archived round
type RoundMessage struct {
	Seed        int       `json:"seed"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationSec float64   `json:"duration_sec"`
}

type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	Session SessionMessage `json:"session"`
}

type ListSessionsRequest struct{}

type ListSessionsResponse struct {
	Sessions []SessionMessage `json:"sessions"`
}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

type GetSessionResponse struct {
	Session  SessionMessage `json:"session"`
	Snapshot scene.Snapshot `json:"snapshot"`
}

type DeleteSessionRequest struct {
	SessionID string `json:"session_id"`
}

type DeleteSessionResponse struct{}

// RoundRequest addresses a session's round. Seed is only read by start and
// restart; when absent the session's seed is used.
type RoundRequest struct {
	SessionID string `json:"session_id"`
	Seed      *int   `json:"seed,omitempty"`
}

type RoundResponse struct {
	Snapshot scene.Snapshot `json:"snapshot"`
}

func sessionToMessage(s models.Session) SessionMessage {
	msg := SessionMessage{
		ID:        s.ID.String(),
		Seed:      s.Seed,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		CreatedAt: s.CreatedAt,
	}
	for _, r := range s.Rounds {
		msg.Rounds = append(msg.Rounds, RoundMessage{
			Seed:        r.Seed,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			DurationSec: r.Duration().Seconds(),
		})
	}
	return msg
}
