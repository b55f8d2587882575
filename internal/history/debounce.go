package history

import (
	"time"

	"github.com/starford/cutline/internal/clock"
)

// DefaultDebounce is the quiet period before a burst of edits is recorded.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of edits into one history capture. Each Trigger
// restarts the quiet period. The owner selects on C and calls Fired when it
// delivers. A Debouncer is not safe for concurrent use; it is meant to be
// driven from a single event loop.
type Debouncer struct {
	clock   clock.Clock
	delay   time.Duration
	timer   clock.Timer
	pending bool
}

// NewDebouncer returns a Debouncer with the given quiet period
// (DefaultDebounce when delay <= 0).
func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{clock: c, delay: delay}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	if d.timer == nil {
		d.timer = d.clock.NewTimer(d.delay)
	} else {
		d.timer.Reset(d.delay)
	}
	d.pending = true
}

// C returns the channel that delivers when the quiet period ends, or nil when
// nothing is pending. A nil channel blocks forever in a select.
func (d *Debouncer) C() <-chan time.Time {
	if !d.pending {
		return nil
	}
	return d.timer.C()
}

// Fired acknowledges a delivery from C.
func (d *Debouncer) Fired() {
	d.pending = false
}

// Pending reports whether a capture is scheduled.
func (d *Debouncer) Pending() bool { return d.pending }

// Cancel drops a scheduled capture. It reports whether one was pending and is
// a no-op otherwise.
func (d *Debouncer) Cancel() bool {
	if !d.pending {
		return false
	}
	d.timer.Stop()
	d.pending = false
	return true
}
