package round

// Phase represents the lifecycle state of a round
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseRunning Phase = "RUNNING"
	PhasePaused  Phase = "PAUSED"
	PhaseEnded   Phase = "ENDED"
)

// CanStart reports whether a start or restart is allowed from this phase
func (p Phase) CanStart() bool {
	return p == PhaseIdle || p == PhaseEnded
}

func (p Phase) String() string {
	return string(p)
}
