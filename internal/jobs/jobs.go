// Package jobs persists video jobs submitted to the service.
package jobs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"demoreel/internal/studio"
)

type Status string

const (
	StatusQueued  Status = "QUEUED"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusDone, StatusFailed:
		return true
	}
	return false
}

const (
	// MaxErrorText bounds the stored failure message.
	MaxErrorText = 2000
	// NarrationFileName is what a job's narration text is written to.
	NarrationFileName = "narration.txt"
)

// Record is one stored job.
type Record struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Status        Status     `json:"status"`
	SourceURL     string     `json:"source_url"`
	NarrationText string     `json:"narration_text,omitempty"`
	TargetSeconds int        `json:"target_seconds"`
	Voice         string     `json:"voice,omitempty"`
	Profile       string     `json:"profile,omitempty"`
	OutputKey     string     `json:"output_key,omitempty"`
	OutputSize    int64      `json:"output_size,omitempty"`
	ErrorText     string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// NewID returns a time ordered job ID.
func NewID() string {
	return fmt.Sprintf("job_%d", time.Now().UnixNano())
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a file name stem from the repository URL.
func (r Record) Slug() string {
	base := strings.ToLower(filepath.Base(strings.TrimSuffix(r.SourceURL, "/")))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		return "demo"
	}
	return base
}

// Job lays the record out under dir: the narration it was written to and the
// output path for the video.
func (r Record) Job(dir, narrationPath string) studio.VideoJob {
	return studio.VideoJob{
		ID:             r.ID,
		SourceURL:      r.SourceURL,
		NarrationPath:  narrationPath,
		OutputPath:     filepath.Join(dir, r.Slug()+"-FINAL.mp4"),
		TargetDuration: time.Duration(r.TargetSeconds) * time.Second,
		Voice:          r.Voice,
	}
}

// Truncate bounds msg to MaxErrorText bytes.
func Truncate(msg string) string {
	if len(msg) > MaxErrorText {
		return msg[:MaxErrorText]
	}
	return msg
}
