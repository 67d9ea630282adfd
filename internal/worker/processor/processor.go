package processor

import (
	"context"

	"demoreel/internal/jobs"
	"demoreel/internal/pkg/errors"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/ports"
	"demoreel/internal/studio"
)

// Store is the job state the processor reads and advances.
type Store interface {
	Get(ctx context.Context, id string) (*jobs.Record, error)
	MarkRunning(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id, outputKey string, size int64) error
	MarkFailed(ctx context.Context, id, msg string) error
}

// Producer turns a video job into a finished file.
type Producer interface {
	Produce(ctx context.Context, job studio.VideoJob) (*studio.Result, error)
}

// ProducerFor returns the producer for a playback profile; "" selects the
// default.
type ProducerFor func(profile string) (Producer, error)

type Deps struct {
	Store        Store
	Producers    ProducerFor
	SP           ports.StorageProvider
	WorkDir      string
	CleanupLocal bool
	Log          *logger.Logger
}

type Processor struct {
	store     Store
	producers ProducerFor
	sp        ports.StorageProvider
	workDir   string
	log       *logger.Logger

	cleanup *Cleanup
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("processor")

	return &Processor{
		store:     d.Store,
		producers: d.Producers,
		sp:        d.SP,
		workDir:   d.WorkDir,
		log:       log,
		cleanup:   NewCleanup(d.CleanupLocal, d.SP),
	}
}

// ProcessJob runs a queued job end to end and records the outcome.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	// 1. Fetch the job
	log.Debug("fetching job")
	rec, err := p.store.Get(ctx, jobID)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			// Nothing to mark failed.
			return err
		}
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.fetch", "failed to fetch job"))
	}
	if rec.Status == jobs.StatusDone {
		log.Info("job already done, skipping")
		return nil
	}

	// 2. Mark as running
	if err := p.store.MarkRunning(ctx, jobID); err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.status", "failed to mark job as running"))
	}

	// 3. Materialize the narration
	dir := JobDir(p.workDir, jobID)
	narration, err := MaterializeNarration(dir, rec.NarrationText)
	if err != nil {
		return p.failJob(ctx, jobID, err)
	}

	job := rec.Job(dir, narration)
	if err := job.Validate(); err != nil {
		return p.failJob(ctx, jobID, err)
	}

	// 4. Produce the video
	producer, err := p.producers(rec.Profile)
	if err != nil {
		return p.failJob(ctx, jobID, errors.ValidationField("profile", err.Error()))
	}
	log.Info("producing video", "source", rec.SourceURL, "target_s", rec.TargetSeconds, "profile", rec.Profile)
	res, err := producer.Produce(ctx, job)
	if err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.produce", "production failed"))
	}

	// 5. Publish
	key := OutputKey(jobID, res.OutputPath)
	pub, err := Publish(ctx, p.sp, res.OutputPath, key)
	if err != nil {
		return p.failJob(ctx, jobID, err)
	}
	log.Debug("video published", "provider", p.sp.Provider(), "object_key", pub.ObjectKey, "size", pub.Size)

	// 6. Record the result
	if err := p.store.MarkDone(ctx, jobID, pub.ObjectKey, pub.Size); err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.save", "failed to save job output"))
	}

	// 7. Clean up the working directory
	if p.cleanup.CleanupJob(dir) {
		log.Debug("cleanup completed", "dir", dir)
	}
	return nil
}

func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	var e *errors.Error
	if errors.As(cause, &e) {
		log.Error("job failed",
			"code", string(e.Code),
			"op", e.Op,
			"message", e.Message,
		)
	} else {
		log.Error("job failed", "error", cause.Error())
	}

	// The job context may already be cancelled; record the failure anyway.
	if err := p.store.MarkFailed(context.WithoutCancel(ctx), jobID, cause.Error()); err != nil {
		log.Warn("could not mark job failed", "error", err.Error())
	}
	return cause
}
