package editor

import (
	"time"

	"github.com/starford/cutline/internal/clock"
)

// Player owns the playback ticker. At most one ticker runs at a time.
type Player struct {
	clock    clock.Clock
	interval time.Duration
	step     float64
	ticker   clock.Ticker
}

// NewPlayer returns a stopped Player advancing step seconds every interval.
func NewPlayer(c clock.Clock, interval time.Duration, step float64) *Player {
	if interval <= 0 {
		interval = DefaultPlaybackInterval
	}
	if step <= 0 {
		step = DefaultPlaybackStep
	}
	return &Player{clock: c, interval: interval, step: step}
}

// Start starts ticking. It reports false when already playing.
func (p *Player) Start() bool {
	if p.ticker != nil {
		return false
	}
	p.ticker = p.clock.NewTicker(p.interval)
	return true
}

// Stop stops ticking. It reports false when already stopped.
func (p *Player) Stop() bool {
	if p.ticker == nil {
		return false
	}
	p.ticker.Stop()
	p.ticker = nil
	return true
}

// Playing reports whether the ticker runs.
func (p *Player) Playing() bool { return p.ticker != nil }

// Step returns the playhead advance per tick in seconds.
func (p *Player) Step() float64 { return p.step }

// C returns the tick channel, nil while stopped.
func (p *Player) C() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.C()
}
