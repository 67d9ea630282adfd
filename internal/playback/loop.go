package playback

import (
	"context"
	"time"

	"demoreel/internal/pkg/errors"
	"demoreel/internal/pkg/logger"
)

// Navigator is the page the loop drives.
type Navigator interface {
	// ShowCode follows a source-file link from the current page.
	ShowCode(ctx context.Context) error
	// ShowOutput returns to the root page and follows a data-file link.
	ShowOutput(ctx context.Context) error
	// Scroll moves the viewport by offset pixels over duration.
	Scroll(ctx context.Context, offset int, duration time.Duration, eased bool) error
}

// Clock abstracts wall time so tests can run a session instantly.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Report summarizes a finished session.
type Report struct {
	Phases  []Phase
	Ticks   int
	Pauses  int
	Scrolls int
	Misses  int
	Elapsed time.Duration
}

// Loop runs the timed session.
type Loop struct {
	Nav     Navigator
	Clock   Clock
	Rand    Rand
	Profile Profile
	Log     *logger.Logger

	// ProgressEvery controls the progress log cadence (default 5s).
	ProgressEvery time.Duration
}

// Run drives the page until total has elapsed. Failed phase transitions are
// logged and retried on a later tick; scroll failures end the session.
func (l *Loop) Run(ctx context.Context, total time.Duration) (Report, error) {
	log := l.Log
	if log == nil {
		log = logger.Discard()
	}
	clock := l.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	every := l.ProgressEvery
	if every <= 0 {
		every = 5 * time.Second
	}

	state := NewState(clock.Now())
	report := Report{Phases: []Phase{state.Phase}}
	lastBucket := time.Duration(-1)

	log.WithPhase(state.Phase.String()).Info("session started", "total_s", total.Seconds())

	for {
		now := clock.Now()
		elapsed := now.Sub(state.SessionStartedAt)
		if elapsed >= total {
			report.Elapsed = elapsed
			break
		}

		if next, due := state.Due(now, total); due {
			if err := l.enter(ctx, next); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				report.Misses++
				log.WithPhase(state.Phase.String()).Warn("phase change skipped",
					"target", next.String(),
					"error", err.Error(),
				)
			} else {
				state = state.Advance(clock.Now())
				report.Phases = append(report.Phases, state.Phase)
				log.WithPhase(state.Phase.String()).Info("phase changed", "elapsed_s", int(elapsed.Seconds()))
				if err := clock.Sleep(ctx, l.Profile.ClickSettle); err != nil {
					return report, err
				}
			}
		}

		d := Decide(l.Rand, l.Profile)
		report.Ticks++
		switch d.Action {
		case ActionPause:
			report.Pauses++
			log.Debug("reading pause", "ms", d.Duration.Milliseconds())
			if err := clock.Sleep(ctx, d.Duration); err != nil {
				return report, err
			}
		case ActionScroll:
			report.Scrolls++
			if err := l.Nav.Scroll(ctx, d.Offset(), d.Duration, d.Eased); err != nil {
				return report, errors.WrapWithCode(err, errors.CodeBrowser, "playback.scroll", "scroll failed")
			}
		}

		if err := clock.Sleep(ctx, Delay(l.Rand, l.Profile)); err != nil {
			return report, err
		}

		if bucket := elapsed / every; bucket != lastBucket {
			lastBucket = bucket
			log.Info("progress", "elapsed_s", int(elapsed.Seconds()), "total_s", int(total.Seconds()))
		}
	}

	log.WithPhase(state.Phase.String()).Info("session finished",
		"ticks", report.Ticks,
		"phases", len(report.Phases),
		"misses", report.Misses,
	)
	return report, nil
}

func (l *Loop) enter(ctx context.Context, phase Phase) error {
	switch phase {
	case PhaseCode:
		return l.Nav.ShowCode(ctx)
	case PhaseOutput:
		return l.Nav.ShowOutput(ctx)
	default:
		return nil
	}
}
