package editor

import (
	"log/slog"
	"time"

	"github.com/starford/cutline/internal/clock"
	"github.com/starford/cutline/internal/history"
)

// Config holds the timing and capacity settings of an editing session.
type Config struct {
	HistoryCapacity  int
	Debounce         time.Duration
	PlaybackInterval time.Duration
	PlaybackStep     float64
}

// Playback defaults.
const (
	DefaultPlaybackInterval = 100 * time.Millisecond
	DefaultPlaybackStep     = 0.1
)

// DefaultConfig returns the stock editor settings.
func DefaultConfig() Config {
	return Config{
		HistoryCapacity:  history.DefaultCapacity,
		Debounce:         history.DefaultDebounce,
		PlaybackInterval: DefaultPlaybackInterval,
		PlaybackStep:     DefaultPlaybackStep,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = d.HistoryCapacity
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.PlaybackInterval <= 0 {
		c.PlaybackInterval = d.PlaybackInterval
	}
	if c.PlaybackStep <= 0 {
		c.PlaybackStep = d.PlaybackStep
	}
	return c
}

// Option configures editors, sessions and registries.
type Option func(*options)

type options struct {
	clock    clock.Clock
	config   Config
	logger   *slog.Logger
	notifier Notifier
	newID    func() string
}

func buildOptions(opts []Option) options {
	o := options{
		clock:  clock.Real(),
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.config = o.config.withDefaults()
	return o
}

// WithClock sets the clock that drives history debounce and playback.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithConfig sets the session settings. Zero fields take defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNotifier sets the function that receives editor events.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithIDGenerator overrides how track and clip ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}
