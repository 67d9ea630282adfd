package studio

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"demoreel/internal/media"
	"demoreel/internal/pkg/errors"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/playback"
)

// Prober measures media duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Recorder starts a screen capture.
type Recorder interface {
	Start(ctx context.Context, spec media.CaptureSpec, out string) (media.Recording, error)
}

// Muxer merges the silent capture with the narration.
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
}

// Session is the browser page a job films.
type Session interface {
	playback.Navigator
	Open(ctx context.Context, url string) error
	Close() error
}

// Launcher opens a fresh browser session.
type Launcher func(ctx context.Context) (Session, error)

// DefaultWarmup lets the recorder attach to the display before navigation.
const DefaultWarmup = 2 * time.Second

type Deps struct {
	Synth    media.Synthesizer
	Probe    Prober
	Recorder Recorder
	Muxer    Muxer
	Browser  Launcher

	// Capture holds display, size and frame rate; the duration is set per job.
	Capture media.CaptureSpec
	Profile playback.Profile
	Warmup  time.Duration

	Clock playback.Clock
	Rand  playback.Rand
	Log   *logger.Logger
}

type Studio struct {
	synth    media.Synthesizer
	probe    Prober
	recorder Recorder
	muxer    Muxer
	browser  Launcher

	capture media.CaptureSpec
	profile playback.Profile
	warmup  time.Duration
	clock   playback.Clock
	rand    playback.Rand
	log     *logger.Logger
}

func New(d Deps) *Studio {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	clock := d.Clock
	if clock == nil {
		clock = playback.SystemClock{}
	}
	r := d.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	profile := d.Profile
	if profile.Name == "" {
		profile = playback.Standard
	}
	warmup := d.Warmup
	if warmup <= 0 {
		warmup = DefaultWarmup
	}

	return &Studio{
		synth:    d.Synth,
		probe:    d.Probe,
		recorder: d.Recorder,
		muxer:    d.Muxer,
		browser:  d.Browser,
		capture:  d.Capture,
		profile:  profile,
		warmup:   warmup,
		clock:    clock,
		rand:     r,
		log:      log.WithComponent("studio"),
	}
}

// Result describes a finished video.
type Result struct {
	OutputPath      string
	Size            int64
	AudioSeconds    float64
	CaptureDuration time.Duration
	Report          playback.Report
}

// Produce runs one job to completion. On failure intermediate files are left
// in place.
func (s *Studio) Produce(ctx context.Context, job VideoJob) (*Result, error) {
	job = job.WithDefaults()
	log := s.log.FromContext(ctx).WithJobID(job.Name())

	// 1. Validate
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "studio.mkdir", "create output directory")
	}

	base := media.Base(job.OutputPath)
	audioPath := s.synth.AudioPath(base)
	videoPath := base + s.profile.VideoSuffix

	log.Info("producing video",
		"source", job.SourceURL,
		"output", job.OutputPath,
		"target_s", job.TargetDuration.Seconds(),
		"profile", s.profile.Name,
	)

	// 2. Narration
	log.Info("synthesizing narration", "narration", job.NarrationPath)
	if err := s.synth.Synthesize(ctx, job.NarrationPath, audioPath, job.Voice); err != nil {
		return nil, err
	}

	// 3. Measure it
	audioSecs, err := s.probe.Duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	total := playback.CaptureDuration(job.TargetDuration, audioSecs, s.profile.Buffer)
	log.Info("narration ready", "audio_s", audioSecs, "capture_s", total.Seconds())

	// 4. Browser
	session, err := s.browser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "studio.browser", "launch browser")
	}

	// 5. Recorder
	spec := s.capture
	spec.Duration = total
	rec, err := s.recorder.Start(ctx, spec, videoPath)
	if err != nil {
		s.closeSession(session, log)
		return nil, err
	}
	log.Info("recording started", "video", videoPath)

	// 6. Walk the repository
	report, err := s.perform(ctx, session, job.SourceURL, total, log)
	if err != nil {
		s.closeSession(session, log)
		if kerr := rec.Kill(); kerr != nil {
			log.Warn("recorder kill failed", "error", kerr.Error())
		}
		return nil, err
	}
	s.closeSession(session, log)

	// 7. Wait for the recorder
	if err := rec.Wait(); err != nil {
		return nil, err
	}
	log.Info("recording finished")

	// 8. Mux
	if err := s.muxer.Mux(ctx, videoPath, audioPath, job.OutputPath); err != nil {
		return nil, err
	}

	// 9. Cleanup
	for _, tmp := range []string{videoPath, audioPath} {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			log.Warn("temporary file not removed", "path", tmp, "error", err.Error())
		}
	}

	// 10. Verify
	info, err := os.Stat(job.OutputPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeMux, "studio.verify", "output missing after mux")
	}
	if info.Size() == 0 {
		return nil, errors.New(errors.CodeMux, "output is empty after mux").WithField("output", job.OutputPath)
	}

	log.Info("video ready",
		"output", job.OutputPath,
		"size_mb", float64(info.Size())/(1024*1024),
		"phases", len(report.Phases),
	)
	return &Result{
		OutputPath:      job.OutputPath,
		Size:            info.Size(),
		AudioSeconds:    audioSecs,
		CaptureDuration: total,
		Report:          report,
	}, nil
}

// perform loads the page after the recorder warmup and runs the playback loop.
func (s *Studio) perform(ctx context.Context, session Session, url string, total time.Duration, log *logger.Logger) (playback.Report, error) {
	if err := s.clock.Sleep(ctx, s.warmup); err != nil {
		return playback.Report{}, err
	}
	if err := session.Open(ctx, url); err != nil {
		return playback.Report{}, err
	}
	if err := s.clock.Sleep(ctx, s.profile.LoadSettle); err != nil {
		return playback.Report{}, err
	}

	loop := &playback.Loop{
		Nav:     session,
		Clock:   s.clock,
		Rand:    s.rand,
		Profile: s.profile,
		Log:     log,
	}
	return loop.Run(ctx, total)
}

func (s *Studio) closeSession(session Session, log *logger.Logger) {
	if err := session.Close(); err != nil {
		log.Warn("browser close failed", "error", err.Error())
	}
}

// RunBatch produces jobs one after another and stops at the first failure.
func (s *Studio) RunBatch(ctx context.Context, jobs []VideoJob) ([]*Result, error) {
	results := make([]*Result, 0, len(jobs))
	for i, job := range jobs {
		s.log.Info("batch job", "index", i+1, "of", len(jobs), "job", job.Name())
		res, err := s.Produce(ctx, job)
		if err != nil {
			return results, errors.Wrap(err, "studio.batch", "batch stopped").
				WithField("job", job.Name()).
				WithField("index", i+1)
		}
		results = append(results, res)
	}
	s.log.Info("batch finished", "videos", len(results))
	return results, nil
}
