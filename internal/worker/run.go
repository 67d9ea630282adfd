package worker

import (
	"context"
	"time"

	"demoreel/internal/pkg/logger"
)

// Queue yields job IDs. Pop returns "" when its wait timed out.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// Run processes jobs one at a time until ctx is cancelled. One display is
// filmed per worker, so jobs never run concurrently.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	popTimeout := d.PopTimeout
	if popTimeout <= 0 {
		popTimeout = 30 * time.Second
	}
	retry := d.RetryDelay
	if retry <= 0 {
		retry = time.Second
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		jobID, err := d.Queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}
			log.Warn("queue pop error, retrying", "error", err.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retry):
			}
			continue
		}
		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		start := time.Now()

		if err := d.Processor.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed", "duration_ms", time.Since(start).Milliseconds())
		}
	}
}
