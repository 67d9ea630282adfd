package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"demoreel/internal/app"
	"demoreel/internal/catalog"
	"demoreel/internal/config"
	"demoreel/internal/diagnostics"
	"demoreel/internal/media"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/studio"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runFlags struct {
	all       bool
	repo      string
	narration string
	output    string
	duration  int
	voice     string
	profile   string
	batch     string
	only      string
}

func newRootCmd() *cobra.Command {
	var f runFlags

	root := &cobra.Command{
		Use:   "demoreel",
		Short: "Record narrated demo videos of GitHub repositories",
		Example: "  demoreel --all\n" +
			"  demoreel --repo https://github.com/patruzz/lead-gen-bot --narration narrations/narration-2.txt --output output/demo-2.mp4\n" +
			"  demoreel --batch jobs.yaml\n" +
			"  demoreel --only 2,3",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := selectJobs(f)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return cmd.Help()
			}
			return runJobs(cmd.Context(), f.profile, jobs)
		},
	}

	fl := root.Flags()
	fl.BoolVar(&f.all, "all", false, "produce every built-in demo")
	fl.StringVar(&f.repo, "repo", "", "repository URL for a single video")
	fl.StringVar(&f.narration, "narration", "", "narration text file")
	fl.StringVar(&f.output, "output", "", "output video path")
	fl.IntVar(&f.duration, "duration", 60, "target duration in seconds")
	fl.StringVar(&f.voice, "voice", "", "voice name (edge-tts) or sample file (clone)")
	fl.StringVar(&f.profile, "profile", "", "playback profile: standard|light (default from PLAYBACK_PROFILE)")
	fl.StringVar(&f.batch, "batch", "", "YAML manifest of videos to produce")
	fl.StringVar(&f.only, "only", "", "comma separated 1-based indexes into the built-in demos")

	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVoiceSampleCmd())
	return root
}

// selectJobs resolves flags to jobs. An incomplete invocation yields no jobs.
func selectJobs(f runFlags) ([]studio.VideoJob, error) {
	switch {
	case f.batch != "":
		entries, err := catalog.LoadFile(f.batch)
		if err != nil {
			return nil, err
		}
		return catalog.Jobs(entries), nil
	case f.only != "":
		idx, err := catalog.ParseSelection(f.only)
		if err != nil {
			return nil, err
		}
		entries, err := catalog.Select(catalog.Default(), idx)
		if err != nil {
			return nil, err
		}
		return catalog.Jobs(entries), nil
	case f.all:
		return catalog.Jobs(catalog.Default()), nil
	case f.repo != "" && f.narration != "" && f.output != "":
		return []studio.VideoJob{{
			SourceURL:      f.repo,
			NarrationPath:  f.narration,
			OutputPath:     f.output,
			TargetDuration: time.Duration(f.duration) * time.Second,
			Voice:          f.voice,
		}}, nil
	default:
		return nil, nil
	}
}

func runJobs(ctx context.Context, profile string, jobs []studio.VideoJob) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.New(logger.DefaultConfig("text"))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	s, err := app.NewStudio(cfg, profile, log)
	if err != nil {
		return err
	}

	results, err := s.RunBatch(ctx, jobs)
	for _, r := range results {
		fmt.Printf("%s\t%.1f MB\t%s\n", r.OutputPath, float64(r.Size)/(1024*1024), r.CaptureDuration)
	}
	return err
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg, the voice engine, Chrome and the X display",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			report := diagnostics.NewChecker().Run(cfg)
			out := cmd.OutOrStdout()
			for _, it := range report.Items {
				_, _ = fmt.Fprintf(out, "[%s]\t%s\t%s\n", strings.ToUpper(string(it.Status)), it.Name, it.Message)
				if it.Hint != "" && it.Status != diagnostics.StatusPass {
					_, _ = fmt.Fprintf(out, "\t\t%s\n", it.Hint)
				}
			}
			if report.HasFailures {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}

func newVoiceSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voice-sample <in> <out>",
		Short: "Convert a recorded voice sample to 22050 Hz mono WAV for cloning",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			runner := media.ExecRunner{}
			conv := &media.SampleConverter{
				FFmpeg: cfg.Capture.FFmpegBin,
				Probe:  &media.FFProbe{Bin: cfg.Capture.FFprobeBin, Runner: runner},
				Runner: runner,
			}
			secs, err := conv.Convert(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "voice sample saved: %s (%.1fs)\n", args[1], secs)
			return nil
		},
	}
}
