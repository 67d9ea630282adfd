package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("DR_STR", "  value ")
	t.Setenv("DR_BOOL", "true")
	t.Setenv("DR_BAD_BOOL", "maybe")
	t.Setenv("DR_INT", "42")
	t.Setenv("DR_BAD_INT", "4x")
	t.Setenv("DR_SECS", "3")
	t.Setenv("DR_DUR", "750ms")
	t.Setenv("DR_BAD_DUR", "soon")

	if got := Env("DR_STR", "def"); got != "value" {
		t.Errorf("Env = %q", got)
	}
	if got := Env("DR_UNSET", "def"); got != "def" {
		t.Errorf("Env default = %q", got)
	}
	if !BoolEnv("DR_BOOL", false) || !BoolEnv("DR_BAD_BOOL", true) {
		t.Error("BoolEnv")
	}
	if IntEnv("DR_INT", 0) != 42 || IntEnv("DR_BAD_INT", 7) != 7 {
		t.Error("IntEnv")
	}
	if DurationEnv("DR_SECS", 0) != 3*time.Second {
		t.Error("DurationEnv seconds")
	}
	if DurationEnv("DR_DUR", 0) != 750*time.Millisecond {
		t.Error("DurationEnv duration")
	}
	if DurationEnv("DR_BAD_DUR", time.Second) != time.Second {
		t.Error("DurationEnv default")
	}
}

func TestMustEnvPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustEnv("DR_DEFINITELY_UNSET")
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TTS_ENGINE", "DISPLAY_ID", "VIEWPORT_WIDTH", "PLAYBACK_PROFILE", "STORAGE_PROVIDER"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Browser.Display != ":99" || cfg.Browser.Width != 1920 || cfg.Browser.Height != 1080 {
		t.Errorf("browser = %+v", cfg.Browser)
	}
	if cfg.Voice.Engine != EngineEdge || cfg.Voice.Voice != "en-US-GuyNeural" {
		t.Errorf("voice = %+v", cfg.Voice)
	}
	if cfg.Capture.Warmup != 2*time.Second || cfg.Capture.FrameRate != 30 {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"engine", func(c *Config) { c.Voice.Engine = "elevenlabs" }},
		{"viewport", func(c *Config) { c.Browser.Width = 0 }},
		{"frame rate", func(c *Config) { c.Capture.FrameRate = -1 }},
		{"display", func(c *Config) { c.Browser.Display = "99" }},
		{"storage", func(c *Config) { c.Storage.Provider = "s3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TTS_ENGINE", "")
			cfg := Load()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
