// Package studio produces one demo video per job: narration audio first, then
// a recorded browser session sized to it, then the final mux.
package studio

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"demoreel/internal/pkg/errors"
)

// DefaultTargetDuration is used when a job does not set one.
const DefaultTargetDuration = 60 * time.Second

// VideoJob is one request to produce a video.
type VideoJob struct {
	ID             string        `json:"id,omitempty"`
	SourceURL      string        `json:"source_url"`
	NarrationPath  string        `json:"narration_path"`
	OutputPath     string        `json:"output_path"`
	TargetDuration time.Duration `json:"target_duration"`
	Voice          string        `json:"voice,omitempty"`
}

// Name identifies the job in logs: its ID, or the output file name.
func (j VideoJob) Name() string {
	if j.ID != "" {
		return j.ID
	}
	return strings.TrimSuffix(filepath.Base(j.OutputPath), filepath.Ext(j.OutputPath))
}

// WithDefaults fills unset optional fields.
func (j VideoJob) WithDefaults() VideoJob {
	if j.TargetDuration <= 0 {
		j.TargetDuration = DefaultTargetDuration
	}
	return j
}

// Validate checks the job can be attempted.
func (j VideoJob) Validate() error {
	u, err := url.Parse(strings.TrimSpace(j.SourceURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ValidationField("source_url", "must be an absolute http(s) URL")
	}
	if strings.TrimSpace(j.NarrationPath) == "" {
		return errors.ValidationField("narration_path", "is required")
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return errors.ValidationField("output_path", "is required")
	}
	if filepath.Ext(j.OutputPath) == "" {
		return errors.ValidationField("output_path", "needs a file extension")
	}
	if j.TargetDuration < 0 {
		return errors.ValidationField("target_duration", "must not be negative")
	}
	return nil
}
