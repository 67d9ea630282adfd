package worker

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"demoreel/internal/pkg/logger"
)

type scriptedQueue struct {
	items  []string
	errs   []error
	cancel context.CancelFunc
	pops   int
}

func (q *scriptedQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	q.pops++
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		return "", err
	}
	if len(q.items) == 0 {
		q.cancel()
		return "", ctx.Err()
	}
	id := q.items[0]
	q.items = q.items[1:]
	return id, nil
}

type recordingProcessor struct {
	ids  []string
	fail map[string]bool
}

func (p *recordingProcessor) ProcessJob(ctx context.Context, id string) error {
	p.ids = append(p.ids, id)
	if p.fail[id] {
		return stderrors.New("boom")
	}
	return nil
}

func TestRunProcessesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := &scriptedQueue{
		items:  []string{"job_1", "", "job_2", "job_3"},
		errs:   []error{stderrors.New("redis down")},
		cancel: cancel,
	}
	proc := &recordingProcessor{fail: map[string]bool{"job_2": true}}

	err := Run(ctx, Deps{
		Queue:      q,
		Processor:  proc,
		RetryDelay: time.Millisecond,
		Log:        logger.Discard(),
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"job_1", "job_2", "job_3"}
	if len(proc.ids) != len(want) {
		t.Fatalf("processed %v, want %v", proc.ids, want)
	}
	for i := range want {
		if proc.ids[i] != want[i] {
			t.Errorf("processed[%d] = %s, want %s", i, proc.ids[i], want[i])
		}
	}
}
