package game

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// stopAndDrainTicker stops a ticker and discards a tick that already fired
// so nothing stale is read after a restart.
func stopAndDrainTicker(t clockwork.Ticker) {
	t.Stop()
	select {
	case <-t.Chan():
	default:
	}
}

// tickerChan returns the ticker channel, or nil when there is no ticker.
// Receiving from a nil channel blocks forever, which disables the select case.
func tickerChan(t clockwork.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}

// timerChan is tickerChan for a one-shot timer
func timerChan(t clockwork.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}
