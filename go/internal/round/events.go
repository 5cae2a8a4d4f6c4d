package round

import "time"

// EventType identifies an input to the round state machine
type EventType string

const (
	EventStart   EventType = "Start"
	EventRestart EventType = "Restart"
	EventTick    EventType = "Tick"
	EventPause   EventType = "Pause"
	EventResume  EventType = "Resume"
)

// Event is a single input to Apply. At is the wall-clock time the event was
// observed; Seed is only meaningful for Start and Restart.
type Event struct {
	Type EventType
	Seed int
	At   time.Time
}

// Start builds a Start event
func Start(seed int, at time.Time) Event {
	return Event{Type: EventStart, Seed: seed, At: at}
}

// Restart builds a Restart event
func Restart(seed int, at time.Time) Event {
	return Event{Type: EventRestart, Seed: seed, At: at}
}

// Tick builds a Tick event
func Tick(at time.Time) Event {
	return Event{Type: EventTick, At: at}
}

// Pause builds a Pause event
func Pause(at time.Time) Event {
	return Event{Type: EventPause, At: at}
}

// Resume builds a Resume event
func Resume(at time.Time) Event {
	return Event{Type: EventResume, At: at}
}

// EffectType identifies a side effect produced by a transition
type EffectType string

const (
	// EffectEndCleared asks the owner to forget the previous round's end time
	EffectEndCleared EffectType = "EndCleared"
	EffectStarted    EffectType = "Started"
	// EffectTicked asks the owner to play the tick cue once
	EffectTicked  EffectType = "Ticked"
	EffectPaused  EffectType = "Paused"
	EffectResumed EffectType = "Resumed"
	// EffectCueStopped asks the owner to silence any playing cue
	EffectCueStopped EffectType = "CueStopped"
	// EffectBodyFrozen asks the owner to zero the body's velocity
	EffectBodyFrozen EffectType = "BodyFrozen"
	// EffectGameOver asks the owner to show the end-of-round label and restart control
	EffectGameOver EffectType = "GameOver"
	// EffectEnded carries the end time that must be reported exactly once
	EffectEnded EffectType = "Ended"
)

// Effect describes something the owner of a round must do after a transition
type Effect struct {
	Type    EffectType
	At      time.Time
	Counter int
	// Compensated is the number of whole seconds removed on resume
	Compensated int
}
