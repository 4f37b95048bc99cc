package editor

import "time"

// DefaultThrottle limits drag updates to roughly one per frame at 60Hz.
const DefaultThrottle = 16 * time.Millisecond

// Throttler drops events that arrive sooner than interval after the last
// accepted one.
type Throttler struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
	primed   bool
}

func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{interval: interval, now: time.Now}
}

// SetClock replaces the time source.
func (t *Throttler) SetClock(now func() time.Time) { t.now = now }

// Allow reports whether an event may be processed now, and if so records it.
func (t *Throttler) Allow() bool {
	now := t.now()
	if t.primed && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.primed = true
	return true
}

// Reset makes the next event pass.
func (t *Throttler) Reset() { t.primed = false }
