package media

import (
	"context"

	"demoreel/internal/pkg/errors"
)

// FFmpegMuxer combines a silent video with a narration track.
type FFmpegMuxer struct {
	Bin    string
	Runner Runner
}

// Mux copies the video stream, encodes audio to 192k AAC and stops at the
// shorter stream.
func (m *FFmpegMuxer) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	bin := m.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		outPath,
		"-y",
	}
	_, err := run(ctx, m.Runner, errors.CodeMux, "media.FFmpegMuxer.Mux", "mux failed", bin, args...)
	return err
}
