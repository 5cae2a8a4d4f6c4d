package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one game slot. It owns the wall-clock record of its rounds;
// the round itself never points back here.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	Seed      int           `json:"seed"`
	StartTime *time.Time    `json:"start_time,omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Rounds    []RoundRecord `json:"rounds,omitempty"`
}

// RoundRecord is a completed round archived on restart.
type RoundRecord struct {
	Seed      int       `json:"seed"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns how long the archived round ran
func (r RoundRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Ended reports whether the current round has finished
func (s *Session) Ended() bool {
	return s.EndTime != nil
}

// Clone returns a deep copy safe to hand out of the registry
func (s *Session) Clone() Session {
	out := *s
	if s.StartTime != nil {
		t := *s.StartTime
		out.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	if s.Rounds != nil {
		out.Rounds = append([]RoundRecord(nil), s.Rounds...)
	}
	return out
}
