package media

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"demoreel/internal/pkg/errors"
)

// CaptureSpec describes one screen recording.
type CaptureSpec struct {
	Display   string
	Width     int
	Height    int
	FrameRate int
	Duration  time.Duration
}

// Args builds the x11grab argument list writing to out.
func (s CaptureSpec) Args(out string) []string {
	return []string{
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", strconv.Itoa(s.FrameRate),
		"-f", "x11grab",
		"-i", s.Display + ".0",
		"-t", strconv.Itoa(int(math.Ceil(s.Duration.Seconds()))),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		out,
		"-y",
	}
}

// Recording is a running capture.
type Recording interface {
	// Wait blocks until the recorder exits; a non-zero exit is an error.
	Wait() error
	// Kill stops the recorder early.
	Kill() error
}

// FFmpegRecorder records the X display with ffmpeg.
type FFmpegRecorder struct {
	Bin    string
	Runner Runner
}

// Start spawns the recorder. It stops by itself after spec.Duration.
func (r *FFmpegRecorder) Start(ctx context.Context, spec CaptureSpec, out string) (Recording, error) {
	const op = "media.FFmpegRecorder.Start"

	if spec.Duration <= 0 {
		return nil, errors.New(errors.CodeValidation, "capture duration must be positive")
	}

	bin := r.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	args := spec.Args(out)
	proc, err := r.Runner.Start(ctx, bin, args...)
	if err != nil {
		return nil, commandError(err, errors.CodeCapture, op, "recorder did not start",
			newCommandLog(bin, args, Result{ExitCode: -1}))
	}
	return &recording{proc: proc, bin: bin, args: args}, nil
}

type recording struct {
	proc Process
	bin  string
	args []string
}

func (r *recording) Wait() error {
	res, err := r.proc.Wait()
	if err != nil || res.ExitCode != 0 {
		return commandError(err, errors.CodeCapture, "media.Recording.Wait", "recorder failed",
			newCommandLog(r.bin, r.args, res))
	}
	return nil
}

func (r *recording) Kill() error {
	return r.proc.Kill()
}
