package media

import (
	"context"

	"demoreel/internal/pkg/errors"
)

// Bounds for a usable voice sample, in seconds.
const (
	MinSampleSeconds = 5
	MaxSampleSeconds = 60
)

// SampleConverter prepares a recorded voice sample for VoiceClone:
// 22050 Hz mono WAV.
type SampleConverter struct {
	FFmpeg string
	Probe  *FFProbe
	Runner Runner
}

// Convert validates the length of in and writes the converted sample to out.
// It returns the sample duration in seconds.
func (c *SampleConverter) Convert(ctx context.Context, in, out string) (float64, error) {
	secs, err := c.Probe.Duration(ctx, in)
	if err != nil {
		return 0, err
	}
	if secs < MinSampleSeconds {
		return secs, errors.Newf(errors.CodeValidation, "sample too short: %.1fs, need at least %ds", secs, MinSampleSeconds)
	}
	if secs > MaxSampleSeconds {
		return secs, errors.Newf(errors.CodeValidation, "sample too long: %.1fs, at most %ds", secs, MaxSampleSeconds)
	}

	bin := c.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	args := []string{"-i", in, "-ar", "22050", "-ac", "1", "-y", out}
	if _, err := run(ctx, c.Runner, errors.CodeInternal, "media.SampleConverter.Convert", "sample conversion failed", bin, args...); err != nil {
		return secs, err
	}
	return secs, nil
}
