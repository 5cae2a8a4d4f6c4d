package round

import (
	"fmt"
	"time"
)

// Round is one countdown-timed play-through. It is a value: Apply never
// mutates its input and owners replace their copy wholesale.
type Round struct {
	Seed           int        `json:"seed"`
	Counter        int        `json:"counter"`
	Phase          Phase      `json:"phase"`
	PauseStartedAt *time.Time `json:"pause_started_at,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
}

// New returns an idle round with no counter
func New() Round {
	return Round{Phase: PhaseIdle}
}

// Duration returns how long a finished round lasted, or zero
func (r Round) Duration() time.Duration {
	if r.StartTime == nil || r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(*r.StartTime)
}

// Apply runs a single event against a round and returns the next round along
// with the effects the owner must carry out. On error the input round is
// returned unchanged with no effects.
func Apply(r Round, ev Event) (Round, []Effect, error) {
	switch ev.Type {
	case EventStart:
		if !r.Phase.CanStart() {
			return r, nil, invalidTransition(ev.Type, r.Phase)
		}
		return start(r, ev, false)

	case EventRestart:
		if r.Phase != PhaseEnded {
			return r, nil, invalidTransition(ev.Type, r.Phase)
		}
		return start(r, ev, true)

	case EventTick:
		if r.Phase != PhaseRunning {
			return r, nil, invalidTransition(ev.Type, r.Phase)
		}
		return tick(r, ev)

	case EventPause:
		if r.Phase != PhaseRunning {
			return r, nil, invalidTransition(ev.Type, r.Phase)
		}
		next := r
		next.Phase = PhasePaused
		next.PauseStartedAt = timePtr(ev.At)
		return next, []Effect{{Type: EffectPaused, At: ev.At, Counter: next.Counter}}, nil

	case EventResume:
		if r.Phase != PhasePaused {
			return r, nil, invalidTransition(ev.Type, r.Phase)
		}
		return resume(r, ev)

	default:
		return r, nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func start(r Round, ev Event, restart bool) (Round, []Effect, error) {
	if ev.Seed < 0 {
		return r, nil, fmt.Errorf("%w: %d", ErrNegativeSeed, ev.Seed)
	}

	var effects []Effect
	if restart {
		effects = append(effects, Effect{Type: EffectEndCleared, At: ev.At})
	}

	next := Round{
		Seed:      ev.Seed,
		Counter:   ev.Seed,
		Phase:     PhaseRunning,
		StartTime: timePtr(ev.At),
	}
	effects = append(effects, Effect{Type: EffectStarted, At: ev.At, Counter: next.Counter})

	// A zero seed has nothing to count down
	if next.Counter == 0 {
		ended, endEffects := end(next, ev.At)
		return ended, append(effects, endEffects...), nil
	}
	return next, effects, nil
}

func tick(r Round, ev Event) (Round, []Effect, error) {
	next := r
	var effects []Effect
	if next.Counter > 0 {
		next.Counter--
		effects = append(effects, Effect{Type: EffectTicked, At: ev.At, Counter: next.Counter})
	}
	if next.Counter == 0 {
		ended, endEffects := end(next, ev.At)
		return ended, append(effects, endEffects...), nil
	}
	return next, effects, nil
}

// resume charges the time spent in the background against the counter.
// Compensation comes from the clock delta only, never from counting missed ticks.
func resume(r Round, ev Event) (Round, []Effect, error) {
	elapsed := 0
	if r.PauseStartedAt != nil {
		if d := ev.At.Sub(*r.PauseStartedAt); d > 0 {
			elapsed = int(d / time.Second)
		}
	}

	next := r
	next.PauseStartedAt = nil
	next.Phase = PhaseRunning
	next.Counter = max(0, r.Counter-elapsed)

	effects := []Effect{{Type: EffectResumed, At: ev.At, Counter: next.Counter, Compensated: elapsed}}
	if next.Counter == 0 {
		ended, endEffects := end(next, ev.At)
		return ended, append(effects, endEffects...), nil
	}
	return next, effects, nil
}

func end(r Round, at time.Time) (Round, []Effect) {
	next := r
	next.Counter = 0
	next.Phase = PhaseEnded
	next.PauseStartedAt = nil
	next.EndTime = timePtr(at)

	return next, []Effect{
		{Type: EffectCueStopped, At: at},
		{Type: EffectBodyFrozen, At: at},
		{Type: EffectGameOver, At: at},
		{Type: EffectEnded, At: at},
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
