package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Timers and tickers fire only from
// Advance. Channels hold one pending value; further fires are dropped, as
// with time.Ticker.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTimer implements Clock.
func (f *Fake) NewTimer(d time.Duration) Timer {
	return f.add(d, 0)
}

// NewTicker implements Clock.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	return fakeTicker{f.add(d, d)}
}

// Advance moves the clock forward by d, firing every timer and ticker that
// comes due, in deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.now.Add(d)
	for {
		next := f.nextDue(target)
		if next == nil {
			break
		}
		f.now = next.when
		select {
		case next.ch <- f.now:
		default:
		}
		if next.period > 0 {
			next.when = next.when.Add(next.period)
		} else {
			next.active = false
		}
	}
	f.now = target
	f.compact()
}

// Active returns the number of timers and tickers that can still fire.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if t.active {
			n++
		}
	}
	return n
}

func (f *Fake) add(d, period time.Duration) *fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{
		f:      f,
		ch:     make(chan time.Time, 1),
		when:   f.now.Add(d),
		period: period,
		active: true,
		listed: true,
	}
	f.timers = append(f.timers, t)
	return t
}

func (f *Fake) nextDue(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range f.timers {
		if !t.active || t.when.After(target) {
			continue
		}
		if next == nil || t.when.Before(next.when) {
			next = t
		}
	}
	return next
}

func (f *Fake) compact() {
	live := f.timers[:0]
	for _, t := range f.timers {
		if t.active {
			live = append(live, t)
		} else {
			t.listed = false
		}
	}
	f.timers = live
}

type fakeTimer struct {
	f      *Fake
	ch     chan time.Time
	when   time.Time
	period time.Duration
	active bool
	listed bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	was := t.active
	t.active = false
	t.drain()
	return was
}

func (t *fakeTimer) Reset(d time.Duration) bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	was := t.active
	t.drain()
	t.when = t.f.now.Add(d)
	t.active = true
	if !t.listed {
		t.listed = true
		t.f.timers = append(t.f.timers, t)
	}
	return was
}

// drain discards an undelivered fire, matching time.Timer since Go 1.23.
func (t *fakeTimer) drain() {
	select {
	case <-t.ch:
	default:
	}
}

type fakeTicker struct{ t *fakeTimer }

func (k fakeTicker) C() <-chan time.Time { return k.t.C() }

func (k fakeTicker) Stop() { k.t.Stop() }
