package handlers

import (
	"context"

	"demoreel/internal/jobs"
	"demoreel/internal/pkg/logger"
	"demoreel/internal/ports"
)

// JobStore is the job table as the API sees it.
type JobStore interface {
	Create(ctx context.Context, j *jobs.Record) error
	Get(ctx context.Context, id string) (*jobs.Record, error)
	List(ctx context.Context, status jobs.Status, limit int) ([]jobs.Record, error)
	MarkFailed(ctx context.Context, id, msg string) error
	Ping(ctx context.Context) error
}

// Queue hands job IDs to the workers.
type Queue interface {
	Push(ctx context.Context, jobID string) error
	Ping(ctx context.Context) error
}

type Deps struct {
	Jobs  JobStore
	Queue Queue
	SP    ports.StorageProvider
	Log   *logger.Logger
	// NewID overrides job ID generation in tests.
	NewID func() string
}

type Handler struct {
	jobs  JobStore
	queue Queue
	sp    ports.StorageProvider
	log   *logger.Logger
	newID func() string
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	newID := d.NewID
	if newID == nil {
		newID = jobs.NewID
	}
	return &Handler{
		jobs:  d.Jobs,
		queue: d.Queue,
		sp:    d.SP,
		log:   log.WithComponent("api"),
		newID: newID,
	}
}

// Log is the handler's logger, for wrapping routes.
func (h *Handler) Log() *logger.Logger {
	return h.log
}
