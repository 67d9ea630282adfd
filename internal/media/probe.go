package media

import (
	"context"
	"strconv"
	"strings"

	"demoreel/internal/pkg/errors"
)

// FFProbe reads media durations with ffprobe.
type FFProbe struct {
	Bin    string
	Runner Runner
}

// Duration returns the container duration of path in seconds.
func (p *FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	const op = "media.FFProbe.Duration"

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	res, err := run(ctx, p.Runner, errors.CodeProbe, op, "probe failed", p.bin(), args...)
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(res.Stdout)
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	secs, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, errors.WrapWithCode(perr, errors.CodeProbe, op, "unparseable duration").
			WithField("output", raw).
			WithField("path", path)
	}
	if secs <= 0 {
		return 0, errors.Newf(errors.CodeProbe, "non-positive duration %.3f", secs).
			WithField("path", path)
	}
	return secs, nil
}

func (p *FFProbe) bin() string {
	if p.Bin == "" {
		return "ffprobe"
	}
	return p.Bin
}
