package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/timerball/go/internal/events"
	"github.com/mcdev12/timerball/go/internal/round"
	"github.com/mcdev12/timerball/go/internal/scene"
	"github.com/rs/zerolog/log"
)

// ErrRunnerStopped is returned for commands sent to a runner whose loop has exited
var ErrRunnerStopped = errors.New("runner stopped")

// Recorder keeps the wall-clock record of a session's rounds
type Recorder interface {
	RecordStart(id uuid.UUID, seed int, at time.Time) error
	RecordEnd(id uuid.UUID, at time.Time) (bool, error)
}

// EventPublisher ships lifecycle events off the process. Implementations
// must not block the caller for long.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.Event) error
}

// Observer receives every event a runner produces, snapshots included.
// Notify is called from the runner loop and must not block.
type Observer interface {
	Notify(sessionID uuid.UUID, event *events.Event)
}

// RoundEndFunc is called once per completed round
type RoundEndFunc func(sessionID uuid.UUID, endTime time.Time)

// Deps are the collaborators a runner reports to. All are optional except
// Clock, which defaults to the real clock.
type Deps struct {
	Clock      clockwork.Clock
	Recorder   Recorder
	Publisher  EventPublisher
	Observer   Observer
	OnRoundEnd RoundEndFunc
}

// CommandKind selects what a Command asks the runner to do
type CommandKind int

const (
	CommandStart CommandKind = iota
	CommandRestart
	CommandPause
	CommandResume
	CommandSnapshot
)

// Command is a request answered from the runner loop
type Command struct {
	Kind CommandKind
	// Seed is used by CommandStart and CommandRestart
	Seed int

	reply chan result
}

type result struct {
	snap scene.Snapshot
	err  error
}

// Runner drives one session's scene from a single goroutine. Countdown
// ticks, frames and commands are handled one at a time to completion.
type Runner struct {
	id    uuid.UUID
	cfg   Config
	deps  Deps
	scene *scene.Scene

	cmdCh chan Command
	done  chan struct{}

	// ticker only exists while the round is running. After a resume the
	// rest of the interrupted period runs on resumeTimer before it.
	ticker      clockwork.Ticker
	resumeTimer clockwork.Timer
	nextTick    time.Time
	carry       time.Duration
	lastFrame   time.Time
}

// NewRunner creates a runner for a session. seed is the countdown shown
// before the first round starts.
func NewRunner(id uuid.UUID, seed int, cfg Config, cue scene.Cue, deps Deps) *Runner {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Runner{
		id:    id,
		cfg:   cfg,
		deps:  deps,
		scene: scene.New(id.String(), seed, cfg.Scene, cue),
		cmdCh: make(chan Command),
		done:  make(chan struct{}),
	}
}

// ID returns the session id
func (r *Runner) ID() uuid.UUID {
	return r.id
}

// Done is closed once the loop has exited and the ticker is released
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run processes events until ctx is cancelled
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	frames := r.deps.Clock.NewTicker(r.cfg.FrameInterval)
	defer frames.Stop()
	defer r.scene.Close()
	defer r.stopTicker()

	r.lastFrame = r.deps.Clock.Now()

	log.Debug().Str("session_id", r.id.String()).Msg("runner started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session_id", r.id.String()).Msg("runner shutting down")
			return

		case cmd := <-r.cmdCh:
			cmd.reply <- r.handle(ctx, cmd)

		case <-tickerChan(r.ticker):
			r.nextTick = r.deps.Clock.Now().Add(r.cfg.TickInterval)
			r.countdown(ctx)

		case <-timerChan(r.resumeTimer):
			r.resumeTimer = nil
			r.countdown(ctx)

		case now := <-frames.Chan():
			r.frame(now)
		}
	}
}

// Start begins a round counting down from seed
func (r *Runner) Start(ctx context.Context, seed int) (scene.Snapshot, error) {
	return r.Submit(ctx, Command{Kind: CommandStart, Seed: seed})
}

// Restart begins a new round after the previous one ended
func (r *Runner) Restart(ctx context.Context, seed int) (scene.Snapshot, error) {
	return r.Submit(ctx, Command{Kind: CommandRestart, Seed: seed})
}

// Pause suspends the countdown
func (r *Runner) Pause(ctx context.Context) (scene.Snapshot, error) {
	return r.Submit(ctx, Command{Kind: CommandPause})
}

// Resume continues the countdown, charging the time spent paused
func (r *Runner) Resume(ctx context.Context) (scene.Snapshot, error) {
	return r.Submit(ctx, Command{Kind: CommandResume})
}

// Snapshot returns the current render state
func (r *Runner) Snapshot(ctx context.Context) (scene.Snapshot, error) {
	return r.Submit(ctx, Command{Kind: CommandSnapshot})
}

// Submit hands a command to the loop and waits for its answer
func (r *Runner) Submit(ctx context.Context, cmd Command) (scene.Snapshot, error) {
	cmd.reply = make(chan result, 1)

	select {
	case r.cmdCh <- cmd:
	case <-r.done:
		return scene.Snapshot{}, ErrRunnerStopped
	case <-ctx.Done():
		return scene.Snapshot{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.snap, res.err
	case <-ctx.Done():
		return scene.Snapshot{}, ctx.Err()
	}
}

func (r *Runner) handle(ctx context.Context, cmd Command) result {
	now := r.deps.Clock.Now()

	var err error
	switch cmd.Kind {
	case CommandStart:
		err = r.apply(ctx, round.Start(cmd.Seed, now))
	case CommandRestart:
		err = r.apply(ctx, round.Restart(cmd.Seed, now))
	case CommandPause:
		err = r.apply(ctx, round.Pause(now))
	case CommandResume:
		err = r.apply(ctx, round.Resume(now))
	case CommandSnapshot:
	}
	return result{snap: r.scene.Snapshot(), err: err}
}

// apply runs one event through the scene, keeps the countdown ticker in
// line with the new phase and reports the effects.
func (r *Runner) apply(ctx context.Context, ev round.Event) error {
	effects, err := r.scene.Apply(ev)
	if err != nil {
		return err
	}

	r.syncTicker()
	r.report(ctx, effects)
	return nil
}

func (r *Runner) countdown(ctx context.Context) {
	if err := r.apply(ctx, round.Tick(r.deps.Clock.Now())); err != nil {
		// The ticker is stopped whenever the round leaves Running,
		// so this only fires on a tick that raced the transition.
		log.Debug().Err(err).Str("session_id", r.id.String()).Msg("dropped tick")
	}
}

// syncTicker keeps the countdown clock in line with the phase. Pausing
// keeps what was left of the current period and resuming waits that out
// before the next tick.
func (r *Runner) syncTicker() {
	now := r.deps.Clock.Now()
	counting := r.ticker != nil || r.resumeTimer != nil

	switch phase := r.scene.Round().Phase; {
	case phase == round.PhaseRunning && !counting:
		if r.carry > 0 {
			r.resumeTimer = r.deps.Clock.NewTimer(r.carry)
			r.nextTick = now.Add(r.carry)
			r.carry = 0
			return
		}
		r.ticker = r.deps.Clock.NewTicker(r.cfg.TickInterval)
		r.nextTick = now.Add(r.cfg.TickInterval)
	case phase == round.PhasePaused && counting:
		r.carry = r.remainder(now)
		r.stopTicker()
	case phase != round.PhaseRunning && phase != round.PhasePaused:
		r.carry = 0
		r.stopTicker()
	}
}

// remainder is the part of the current period still to run. A full or
// overdue period counts as none.
func (r *Runner) remainder(now time.Time) time.Duration {
	left := r.nextTick.Sub(now)
	if left <= 0 || left >= r.cfg.TickInterval {
		return 0
	}
	return left
}

func (r *Runner) stopTicker() {
	if r.resumeTimer != nil {
		r.resumeTimer.Stop()
		r.resumeTimer = nil
	}
	if r.ticker == nil {
		return
	}
	stopAndDrainTicker(r.ticker)
	r.ticker = nil
}

func (r *Runner) frame(now time.Time) {
	dt := now.Sub(r.lastFrame)
	r.lastFrame = now

	// The surface counts as attached from the first frame on
	if !r.scene.Attached() {
		r.scene.Attach()
		r.notifySnapshot(now)
		return
	}

	if r.scene.Round().Phase != round.PhaseRunning {
		return
	}
	r.scene.Step(dt)
	r.notifySnapshot(now)
}

func (r *Runner) report(ctx context.Context, effects []round.Effect) {
	current := r.scene.Round()
	sessionID := r.id.String()
	restart := false

	var out []*events.Event
	for _, effect := range effects {
		var (
			typ     events.EventType
			payload any
		)

		switch effect.Type {
		case round.EffectEndCleared:
			restart = true
			continue

		case round.EffectStarted:
			if r.deps.Recorder != nil {
				if err := r.deps.Recorder.RecordStart(r.id, current.Seed, effect.At); err != nil {
					log.Error().Err(err).Str("session_id", sessionID).Msg("failed to record round start")
				}
			}
			typ = events.EventTypeRoundStarted
			payload = events.RoundStartedPayload{
				SessionID: sessionID,
				Seed:      current.Seed,
				Restart:   restart,
				StartedAt: effect.At,
			}

		case round.EffectTicked:
			typ = events.EventTypeRoundTicked
			payload = events.RoundTickedPayload{SessionID: sessionID, Counter: effect.Counter, TickedAt: effect.At}

		case round.EffectPaused:
			typ = events.EventTypeRoundPaused
			payload = events.RoundPausedPayload{SessionID: sessionID, Counter: effect.Counter, PausedAt: effect.At}

		case round.EffectResumed:
			typ = events.EventTypeRoundResumed
			payload = events.RoundResumedPayload{
				SessionID:      sessionID,
				Counter:        effect.Counter,
				CompensatedSec: effect.Compensated,
				ResumedAt:      effect.At,
			}

		case round.EffectEnded:
			r.recordEnd(effect.At)
			var startedAt time.Time
			if current.StartTime != nil {
				startedAt = *current.StartTime
			}
			typ = events.EventTypeRoundEnded
			payload = events.RoundEndedPayload{
				SessionID: sessionID,
				StartedAt: startedAt,
				EndedAt:   effect.At,
				Duration:  current.Duration().String(),
			}

		default:
			// Cue, body and label effects are already rendered by the scene
			continue
		}

		ev, err := events.New(r.id, typ, effect.At, payload)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to build event")
			continue
		}
		out = append(out, ev)
	}

	for _, ev := range out {
		if r.deps.Publisher != nil {
			if err := r.deps.Publisher.Publish(ctx, ev); err != nil {
				log.Warn().Err(err).
					Str("session_id", sessionID).
					Str("event_type", string(ev.Type)).
					Msg("failed to publish event")
			}
		}
		if r.deps.Observer != nil {
			r.deps.Observer.Notify(r.id, ev)
		}
	}
	if len(effects) > 0 {
		r.notifySnapshot(r.deps.Clock.Now())
	}
}

// recordEnd reports the end of a round exactly once
func (r *Runner) recordEnd(at time.Time) {
	applied := true
	if r.deps.Recorder != nil {
		var err error
		applied, err = r.deps.Recorder.RecordEnd(r.id, at)
		if err != nil {
			log.Error().Err(err).Str("session_id", r.id.String()).Msg("failed to record round end")
			return
		}
	}
	if !applied {
		log.Debug().Str("session_id", r.id.String()).Msg("round end already recorded")
		return
	}

	log.Info().
		Str("session_id", r.id.String()).
		Time("end_time", at).
		Msg("round ended")

	if r.deps.OnRoundEnd != nil {
		r.deps.OnRoundEnd(r.id, at)
	}
}

func (r *Runner) notifySnapshot(at time.Time) {
	if r.deps.Observer == nil {
		return
	}
	ev, err := events.New(r.id, events.EventTypeSnapshot, at, r.scene.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("session_id", r.id.String()).Msg("failed to build snapshot event")
		return
	}
	r.deps.Observer.Notify(r.id, ev)
}
