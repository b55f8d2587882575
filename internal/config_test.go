package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/cutline/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	ed := cfg.Editor.Session()
	if ed.HistoryCapacity != 50 || ed.Debounce != 300*time.Millisecond {
		t.Errorf("editor defaults = %+v", ed)
	}
}

func TestEditorConfig_Invalid(t *testing.T) {
	cases := map[string]func(*EditorConfig){
		"zero capacity": func(c *EditorConfig) { c.HistoryCapacity = 0 },
		"zero debounce": func(c *EditorConfig) { c.Debounce = 0 },
		"fast playback": func(c *EditorConfig) { c.PlaybackInterval = time.Millisecond },
		"negative step": func(c *EditorConfig) { c.PlaybackStep = -1 },
		"huge debounce": func(c *EditorConfig) { c.Debounce = time.Hour },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(&cfg.Editor)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("CUTLINE_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `app:
  log_level: debug
  http:
    port: 9090
library:
  path: /tmp/cutline-library
sqlite:
  path: /tmp/cutline.db
auth:
  mode: token
  token: ${CUTLINE_TEST_TOKEN}
editor:
  history_capacity: 20
  debounce: 250ms
  playback_interval: 50ms
  playback_step: 0.05
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Address() != ":9090" || cfg.Auth.Token != "s3cret" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Editor.HistoryCapacity != 20 || cfg.Editor.Debounce != 250*time.Millisecond || cfg.Editor.PlaybackStep != 0.05 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
}

func TestLoadConfigFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("library:\n  path: ./clips\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Library.Path != "./clips" || cfg.Editor.HistoryCapacity != 50 || cfg.App.HTTP.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}
