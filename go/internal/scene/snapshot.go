package scene

import (
	"strconv"
	"time"

	"github.com/mcdev12/timerball/go/internal/round"
)

// Snapshot is everything a client needs to draw one frame of a scene
type Snapshot struct {
	SessionID      string      `json:"session_id"`
	Phase          round.Phase `json:"phase"`
	Seed           int         `json:"seed"`
	Counter        int         `json:"counter"`
	CounterLabel   string      `json:"counter_label"`
	StatusLabel    string      `json:"status_label"`
	RestartVisible bool        `json:"restart_visible"`
	StartEnabled   bool        `json:"start_enabled"`
	Bounds         Bounds      `json:"bounds"`
	Body           *Body       `json:"body,omitempty"`
	StartTime      *time.Time  `json:"start_time,omitempty"`
	EndTime        *time.Time  `json:"end_time,omitempty"`
	CueSeq         uint64      `json:"cue_seq"`
}

// Snapshot copies the scene's render state. Labels are derived from the
// round, which is the only owner of the counter.
func (s *Scene) Snapshot() Snapshot {
	counter := s.round.Counter
	if s.round.Phase == round.PhaseIdle {
		counter = s.seed
	}

	snap := Snapshot{
		SessionID:      s.sessionID,
		Phase:          s.round.Phase,
		Seed:           s.seed,
		Counter:        counter,
		CounterLabel:   CounterPrefix + strconv.Itoa(counter),
		StatusLabel:    s.statusLabel,
		RestartVisible: s.restartVisible,
		StartEnabled:   s.round.Phase.CanStart(),
		Bounds:         s.cfg.Bounds,
		StartTime:      s.round.StartTime,
		EndTime:        s.round.EndTime,
		CueSeq:         s.cueSeq,
	}
	if s.body != nil {
		b := *s.body
		snap.Body = &b
	}
	return snap
}
