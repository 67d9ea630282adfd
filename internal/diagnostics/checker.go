// Package diagnostics checks the host has what a recording needs.
package diagnostics

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"demoreel/internal/config"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one check result with an optional hint.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report aggregates all checks.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Checker validates external tools and required paths.
type Checker struct {
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{lookPath: exec.LookPath, stat: os.Stat}
}

// NewCheckerForTests builds a checker with injected lookups.
func NewCheckerForTests(lookPath func(string) (string, error), stat func(string) (os.FileInfo, error)) *Checker {
	return &Checker{lookPath: lookPath, stat: stat}
}

// Run executes every check for cfg.
func (c *Checker) Run(cfg config.Config) Report {
	items := []Item{
		c.checkTool("ffmpeg", cfg.Capture.FFmpegBin, "Install ffmpeg with x11grab and libx264 support."),
		c.checkTool("ffprobe", cfg.Capture.FFprobeBin, "ffprobe ships with ffmpeg."),
	}

	switch cfg.Voice.Engine {
	case config.EngineClone:
		items = append(items,
			c.checkTool("python", cfg.Voice.Python, "Install python3 with the voice cloning requirements."),
			c.checkFile("clone_script", "Voice clone script", cfg.Voice.CloneScript, "Set VOICE_CLONE_SCRIPT."),
			c.checkFile("voice_sample", "Voice sample", cfg.Voice.Sample, "Record one with `demoreel voice-sample IN OUT`."),
		)
	default:
		items = append(items, c.checkTool("edge-tts", cfg.Voice.EdgeBin, "pip install edge-tts"))
	}

	items = append(items, c.checkBrowser(cfg.Browser.Bin), c.checkDisplay(cfg.Browser.Display))

	report := Report{GeneratedAt: time.Now().UTC(), Items: items}
	for _, item := range items {
		if item.Status == StatusFail {
			report.HasFailures = true
			break
		}
	}
	return report
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(id, bin, hint string) Item {
	item := Item{ID: "tool_" + id, Name: bin}
	path, err := c.lookPath(bin)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Tool not found in PATH: %s", bin)
		item.Hint = hint
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

func (c *Checker) checkFile(id, name, path, hint string) Item {
	item := Item{ID: id, Name: name}
	if strings.TrimSpace(path) == "" {
		item.Status = StatusFail
		item.Message = "Path is empty."
		item.Hint = hint
		return item
	}
	info, err := c.stat(path)
	if err != nil || info.IsDir() {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("File not found: %s", path)
		item.Hint = hint
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found %s", path)
	return item
}

// checkBrowser passes when CHROME_BIN resolves; without it rod downloads a
// browser on first launch, which only warrants a warning.
func (c *Checker) checkBrowser(bin string) Item {
	item := Item{ID: "browser", Name: "Chrome"}
	if bin == "" {
		item.Status = StatusWarn
		item.Message = "CHROME_BIN not set; a browser will be downloaded on first launch."
		item.Hint = "Point CHROME_BIN at google-chrome for stable recordings."
		return item
	}
	if _, err := c.lookPath(bin); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Browser not found: %s", bin)
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Using %s", bin)
	return item
}

// checkDisplay looks for the X server socket of display.
func (c *Checker) checkDisplay(display string) Item {
	item := Item{ID: "display", Name: "X display " + display}
	num := strings.TrimPrefix(display, ":")
	if i := strings.IndexByte(num, '.'); i >= 0 {
		num = num[:i]
	}
	socket := filepath.Join("/tmp/.X11-unix", "X"+num)
	if _, err := c.stat(socket); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("No X server socket at %s", socket)
		item.Hint = fmt.Sprintf("Start one with: Xvfb %s -screen 0 1920x1080x24 &", display)
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("X server listening on %s", socket)
	return item
}
