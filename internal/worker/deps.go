package worker

import (
	"time"

	"demoreel/internal/pkg/logger"
	"demoreel/internal/worker/processor"
)

type Deps struct {
	Queue     Queue
	Processor JobProcessor

	// PopTimeout bounds one blocking queue wait (default 30s).
	PopTimeout time.Duration
	// RetryDelay is waited after a queue error (default 1s).
	RetryDelay time.Duration

	Log *logger.Logger
}

var _ JobProcessor = (*processor.Processor)(nil)
