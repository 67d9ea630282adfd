// Package config loads demoreel settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Browser settings for the filmed Chrome window.
type Browser struct {
	Bin             string
	Display         string
	Width           int
	Height          int
	Headless        bool
	Stealth         bool
	NavigateTimeout time.Duration
}

// Capture settings for the ffmpeg screen recorder.
type Capture struct {
	FFmpegBin  string
	FFprobeBin string
	FrameRate  int
	Warmup     time.Duration
}

// Voice settings. Engine is "edge" (edge-tts) or "clone" (local voice clone).
type Voice struct {
	Engine      string
	EdgeBin     string
	Voice       string
	Python      string
	CloneScript string
	Sample      string
	// SampleDir confines job-selected clone voices to named files inside it.
	SampleDir string
	Language  string
}

// Services used by the API and worker.
type Services struct {
	DatabaseURL string
	RedisAddr   string
	QueueName   string
	HTTPPort    string
	// WorkDir holds per-job outputs before publishing.
	WorkDir string
}

// Storage selects where finished videos are published.
type Storage struct {
	Provider     string
	LocalRoot    string
	CleanupLocal bool

	GDriveClientID     string
	GDriveClientSecret string
	GDriveRefreshToken string
	GDriveFolderID     string
}

type Config struct {
	Browser  Browser
	Capture  Capture
	Voice    Voice
	Profile  string
	Services Services
	Storage  Storage
}

const (
	EngineEdge  = "edge"
	EngineClone = "clone"
)

// Load reads every section from the environment with defaults for a local
// Xvfb display on :99.
func Load() Config {
	return Config{
		Browser: Browser{
			Bin:             Env("CHROME_BIN", ""),
			Display:         Env("DISPLAY_ID", ":99"),
			Width:           IntEnv("VIEWPORT_WIDTH", 1920),
			Height:          IntEnv("VIEWPORT_HEIGHT", 1080),
			Headless:        BoolEnv("BROWSER_HEADLESS", false),
			Stealth:         BoolEnv("BROWSER_STEALTH", true),
			NavigateTimeout: DurationEnv("NAVIGATE_TIMEOUT", 30*time.Second),
		},
		Capture: Capture{
			FFmpegBin:  Env("FFMPEG_BIN", "ffmpeg"),
			FFprobeBin: Env("FFPROBE_BIN", "ffprobe"),
			FrameRate:  IntEnv("CAPTURE_FRAMERATE", 30),
			Warmup:     DurationEnv("CAPTURE_WARMUP", 2*time.Second),
		},
		Voice: Voice{
			Engine:      strings.ToLower(Env("TTS_ENGINE", EngineEdge)),
			EdgeBin:     Env("EDGE_TTS_BIN", "edge-tts"),
			Voice:       Env("TTS_VOICE", "en-US-GuyNeural"),
			Python:      Env("PYTHON_BIN", "python3"),
			CloneScript: Env("VOICE_CLONE_SCRIPT", "voice-clone.py"),
			Sample:      Env("VOICE_SAMPLE", "voice-sample.wav"),
			SampleDir:   Env("VOICE_SAMPLE_DIR", ""),
			Language:    Env("VOICE_LANGUAGE", "en"),
		},
		Profile: Env("PLAYBACK_PROFILE", "standard"),
		Services: Services{
			DatabaseURL: Env("DATABASE_URL", ""),
			RedisAddr:   Env("REDIS_ADDR", "localhost:6379"),
			QueueName:   Env("JOB_QUEUE_NAME", "demoreel:jobs"),
			HTTPPort:    Env("HTTP_PORT", "8080"),
			WorkDir:     Env("WORK_DIR", "./data/work"),
		},
		Storage: Storage{
			Provider:           strings.ToLower(Env("STORAGE_PROVIDER", "localfs")),
			LocalRoot:          Env("STORAGE_LOCAL_ROOT", "./data/storage"),
			CleanupLocal:       BoolEnv("CLEANUP_LOCAL", false),
			GDriveClientID:     Env("GDRIVE_CLIENT_ID", ""),
			GDriveClientSecret: Env("GDRIVE_CLIENT_SECRET", ""),
			GDriveRefreshToken: Env("GDRIVE_REFRESH_TOKEN", ""),
			GDriveFolderID:     Env("GDRIVE_FOLDER_ID", ""),
		},
	}
}

// Validate checks the settings every entry point needs.
func (c Config) Validate() error {
	switch c.Voice.Engine {
	case EngineEdge, EngineClone:
	default:
		return fmt.Errorf("TTS_ENGINE must be %q or %q, got %q", EngineEdge, EngineClone, c.Voice.Engine)
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.Capture.FrameRate <= 0 {
		return fmt.Errorf("CAPTURE_FRAMERATE must be positive")
	}
	if !strings.HasPrefix(c.Browser.Display, ":") {
		return fmt.Errorf("DISPLAY_ID must look like :99, got %q", c.Browser.Display)
	}
	switch c.Storage.Provider {
	case "localfs", "gdrive":
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be localfs or gdrive, got %q", c.Storage.Provider)
	}
	return nil
}
