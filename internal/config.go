package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cutline/internal/editor"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Editor  EditorConfig      `yaml:"editor"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Editor.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LibraryConfig holds the path to the timeline library directory. Timeline
// files and uploaded media live there.
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// EditorConfig holds the timing and capacity settings of editing sessions.
// Durations use Go syntax ("500ms").
type EditorConfig struct {
	HistoryCapacity  int           `yaml:"history_capacity"`
	Debounce         time.Duration `yaml:"debounce"`
	PlaybackInterval time.Duration `yaml:"playback_interval"`
	PlaybackStep     float64       `yaml:"playback_step"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HistoryCapacity, validation.Required, validation.Min(1), validation.Max(10000)),
		validation.Field(&c.Debounce, validation.Required, validation.Min(time.Millisecond), validation.Max(time.Minute)),
		validation.Field(&c.PlaybackInterval, validation.Required, validation.Min(10*time.Millisecond), validation.Max(10*time.Second)),
		validation.Field(&c.PlaybackStep, validation.Required, validation.Min(0.001), validation.Max(60.0)),
	)
}

// Session returns the settings in the form editor sessions take.
func (c *EditorConfig) Session() editor.Config {
	return editor.Config{
		HistoryCapacity:  c.HistoryCapacity,
		Debounce:         c.Debounce,
		PlaybackInterval: c.PlaybackInterval,
		PlaybackStep:     c.PlaybackStep,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	ed := editor.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			Path: "./library",
		},
		SQLite: SQLiteConfig{
			Path: "./cutline.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Editor: EditorConfig{
			HistoryCapacity:  ed.HistoryCapacity,
			Debounce:         ed.Debounce,
			PlaybackInterval: ed.PlaybackInterval,
			PlaybackStep:     ed.PlaybackStep,
		},
	}
}
