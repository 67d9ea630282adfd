// Package catalog lists the demos to produce: the built-in set and YAML batch
// manifests.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"demoreel/internal/studio"
)

// Entry is one demo in a catalog.
type Entry struct {
	Name      string `yaml:"name"`
	Repo      string `yaml:"repo"`
	Narration string `yaml:"narration"`
	Output    string `yaml:"output"`
	// Duration is the target length in seconds.
	Duration int    `yaml:"duration,omitempty"`
	Voice    string `yaml:"voice,omitempty"`
}

// Manifest is the YAML batch file layout.
type Manifest struct {
	Defaults struct {
		Duration int    `yaml:"duration,omitempty"`
		Voice    string `yaml:"voice,omitempty"`
	} `yaml:"defaults"`
	Jobs []Entry `yaml:"jobs"`
}

// Default is the built-in demo set.
func Default() []Entry {
	return []Entry{
		{
			Name:      "real-estate-scraper",
			Repo:      "https://github.com/patruzz/real-estate-scraper",
			Narration: "narrations/narration-1.txt",
			Output:    "output/demo-1-real-estate-scraper-FINAL.mp4",
			Duration:  60,
		},
		{
			Name:      "lead-gen-bot",
			Repo:      "https://github.com/patruzz/lead-gen-bot",
			Narration: "narrations/narration-2.txt",
			Output:    "output/demo-2-lead-gen-bot-FINAL.mp4",
			Duration:  60,
		},
		{
			Name:      "pdf-invoice-parser",
			Repo:      "https://github.com/patruzz/pdf-invoice-parser",
			Narration: "narrations/narration-3.txt",
			Output:    "output/demo-3-pdf-invoice-parser-FINAL.mp4",
			Duration:  60,
		},
	}
}

// Parse decodes a manifest and applies its defaults to every entry.
func Parse(data []byte) ([]Entry, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("manifest has no jobs")
	}

	for i := range m.Jobs {
		e := &m.Jobs[i]
		if e.Duration == 0 {
			e.Duration = m.Defaults.Duration
		}
		if e.Voice == "" {
			e.Voice = m.Defaults.Voice
		}
		if e.Duration < 0 {
			return nil, fmt.Errorf("job %d: negative duration", i+1)
		}
		if strings.TrimSpace(e.Repo) == "" || strings.TrimSpace(e.Narration) == "" || strings.TrimSpace(e.Output) == "" {
			return nil, fmt.Errorf("job %d: repo, narration and output are required", i+1)
		}
		if e.Name == "" {
			e.Name = strings.TrimSuffix(filepath.Base(e.Output), filepath.Ext(e.Output))
		}
	}
	return m.Jobs, nil
}

// LoadFile reads a manifest. Relative narration and output paths are taken
// relative to the manifest's directory.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range entries {
		entries[i].Narration = resolve(dir, entries[i].Narration)
		entries[i].Output = resolve(dir, entries[i].Output)
	}
	return entries, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ParseSelection parses a comma separated list of 1-based indexes.
func ParseSelection(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty selection")
	}
	return out, nil
}

// Select returns the entries at the given 1-based indexes, in that order.
func Select(entries []Entry, indexes []int) ([]Entry, error) {
	out := make([]Entry, 0, len(indexes))
	for _, n := range indexes {
		if n < 1 || n > len(entries) {
			return nil, fmt.Errorf("index %d out of range 1..%d", n, len(entries))
		}
		out = append(out, entries[n-1])
	}
	return out, nil
}

// Job converts the entry to a studio job.
func (e Entry) Job() studio.VideoJob {
	return studio.VideoJob{
		ID:             e.Name,
		SourceURL:      e.Repo,
		NarrationPath:  e.Narration,
		OutputPath:     e.Output,
		TargetDuration: time.Duration(e.Duration) * time.Second,
		Voice:          e.Voice,
	}
}

// Jobs converts every entry.
func Jobs(entries []Entry) []studio.VideoJob {
	jobs := make([]studio.VideoJob, len(entries))
	for i, e := range entries {
		jobs[i] = e.Job()
	}
	return jobs
}
