// Package app builds a studio from configuration.
package app

import (
	"context"
	"fmt"

	"demoreel/internal/browser"
	"demoreel/internal/config"
	"demoreel/internal/media"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/playback"
	"demoreel/internal/studio"
)

// Synthesizer picks the voice engine cfg names.
func Synthesizer(cfg config.Voice, r media.Runner) (media.Synthesizer, error) {
	switch cfg.Engine {
	case config.EngineEdge, "":
		return media.NewEdgeTTS(cfg.EdgeBin, cfg.Voice, r), nil
	case config.EngineClone:
		return &media.VoiceClone{
			Python:    cfg.Python,
			Script:    cfg.CloneScript,
			Sample:    cfg.Sample,
			SampleDir: cfg.SampleDir,
			Language:  cfg.Language,
			Runner:    r,
		}, nil
	default:
		return nil, fmt.Errorf("unknown voice engine %q", cfg.Engine)
	}
}

// BrowserOptions maps browser settings onto session options.
func BrowserOptions(cfg config.Browser) browser.Options {
	opts := browser.DefaultOptions()
	opts.Bin = cfg.Bin
	opts.Display = cfg.Display
	opts.Width = cfg.Width
	opts.Height = cfg.Height
	opts.Headless = cfg.Headless
	opts.Stealth = cfg.Stealth
	if cfg.NavigateTimeout > 0 {
		opts.NavigateTimeout = cfg.NavigateTimeout
	}
	return opts
}

// NewStudio wires real tools, Chrome and the configured playback profile.
// profile overrides cfg.Profile when non-empty.
func NewStudio(cfg config.Config, profile string, log *logger.Logger) (*studio.Studio, error) {
	if profile == "" {
		profile = cfg.Profile
	}
	p, err := playback.ProfileByName(profile)
	if err != nil {
		return nil, err
	}

	runner := media.ExecRunner{}
	synth, err := Synthesizer(cfg.Voice, runner)
	if err != nil {
		return nil, err
	}

	opts := BrowserOptions(cfg.Browser)
	launch := func(ctx context.Context) (studio.Session, error) {
		s, err := browser.Launch(ctx, opts, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	return studio.New(studio.Deps{
		Synth:    synth,
		Probe:    &media.FFProbe{Bin: cfg.Capture.FFprobeBin, Runner: runner},
		Recorder: &media.FFmpegRecorder{Bin: cfg.Capture.FFmpegBin, Runner: runner},
		Muxer:    &media.FFmpegMuxer{Bin: cfg.Capture.FFmpegBin, Runner: runner},
		Browser:  launch,
		Capture: media.CaptureSpec{
			Display:   cfg.Browser.Display,
			Width:     cfg.Browser.Width,
			Height:    cfg.Browser.Height,
			FrameRate: cfg.Capture.FrameRate,
		},
		Profile: p,
		Warmup:  cfg.Capture.Warmup,
		Log:     log,
	}), nil
}
