package diagnostics

import (
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"demoreel/internal/config"
)

type fakeInfo struct{ dir bool }

func (f fakeInfo) Name() string       { return "f" }
func (f fakeInfo) Size() int64        { return 1 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

func statAll(string) (os.FileInfo, error)  { return fakeInfo{}, nil }
func statNone(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

func baseConfig() config.Config {
	var cfg config.Config
	cfg.Capture.FFmpegBin = "ffmpeg"
	cfg.Capture.FFprobeBin = "ffprobe"
	cfg.Voice.Engine = config.EngineEdge
	cfg.Voice.EdgeBin = "edge-tts"
	cfg.Browser.Bin = "google-chrome"
	cfg.Browser.Display = ":99"
	return cfg
}

func find(r Report, id string) Item {
	for _, it := range r.Items {
		if it.ID == id {
			return it
		}
	}
	return Item{}
}

func TestCheckerAllPass(t *testing.T) {
	c := NewCheckerForTests(func(name string) (string, error) { return "/usr/bin/" + name, nil }, statAll)

	report := c.Run(baseConfig())
	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	if got := find(report, "tool_edge-tts").Status; got != StatusPass {
		t.Errorf("edge-tts = %s", got)
	}
}

func TestCheckerMissingTools(t *testing.T) {
	c := NewCheckerForTests(func(string) (string, error) { return "", errors.New("not found") }, statNone)

	report := c.Run(baseConfig())
	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	for _, id := range []string{"tool_ffmpeg", "tool_ffprobe", "tool_edge-tts", "browser", "display"} {
		it := find(report, id)
		if it.Status != StatusFail {
			t.Errorf("%s = %+v, want fail", id, it)
		}
	}
	if find(report, "display").Hint == "" {
		t.Error("display failure has no hint")
	}
}

func TestCheckerCloneEngine(t *testing.T) {
	cfg := baseConfig()
	cfg.Voice.Engine = config.EngineClone
	cfg.Voice.Python = "python3"
	cfg.Voice.CloneScript = "voice-clone.py"
	cfg.Voice.Sample = ""

	c := NewCheckerForTests(func(name string) (string, error) { return "/usr/bin/" + name, nil }, statAll)
	report := c.Run(cfg)

	if find(report, "tool_edge-tts").ID != "" {
		t.Error("edge-tts checked for clone engine")
	}
	if find(report, "clone_script").Status != StatusPass {
		t.Error("clone script should pass")
	}
	if find(report, "voice_sample").Status != StatusFail {
		t.Error("empty sample path should fail")
	}
}

func TestCheckerBrowserWithoutBin(t *testing.T) {
	cfg := baseConfig()
	cfg.Browser.Bin = ""

	c := NewCheckerForTests(func(name string) (string, error) { return "/usr/bin/" + name, nil }, statAll)
	report := c.Run(cfg)

	if got := find(report, "browser").Status; got != StatusWarn {
		t.Errorf("browser = %s, want warn", got)
	}
	if report.HasFailures {
		t.Error("a warning must not fail the report")
	}
}
