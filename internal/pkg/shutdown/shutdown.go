// Package shutdown coordinates graceful stops of the API and worker.
package shutdown

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"demoreel/internal/pkg/logger"
)

// Manager cancels a shared context on SIGINT/SIGTERM and then runs the
// registered cleanups in reverse order of registration.
type Manager struct {
	log     *logger.Logger
	timeout time.Duration

	mu    sync.Mutex
	steps []step

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
	err    error
}

type step struct {
	name string
	fn   func(ctx context.Context) error
}

// NewManager creates a manager; timeout bounds all cleanups together
// (default 30s).
func NewManager(log *logger.Logger, timeout time.Duration) *Manager {
	if log == nil {
		log = logger.NewDefault()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	m := &Manager{
		log:     log.WithComponent("shutdown"),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

func (m *Manager) Register(name string, cleanup func(ctx context.Context) error) {
	m.mu.Lock()
	m.steps = append(m.steps, step{name: name, fn: cleanup})
	m.mu.Unlock()
}

func (m *Manager) RegisterSimple(name string, cleanup func()) {
	m.Register(name, func(context.Context) error {
		cleanup()
		return nil
	})
}

// Context is cancelled as soon as shutdown starts. Long running work such as
// the worker loop runs under it.
func (m *Manager) Context() context.Context { return m.ctx }

// Done is closed once every cleanup has run or the timeout passed.
func (m *Manager) Done() <-chan struct{} { return m.done }

// Wait blocks until a shutdown signal arrives, then shuts down.
func (m *Manager) Wait() error {
	return m.WaitWithContext(context.Background())
}

// WaitWithContext also shuts down when ctx ends or Shutdown was called
// elsewhere.
func (m *Manager) WaitWithContext(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	select {
	case <-sigCtx.Done():
		reason := "signal"
		if ctx.Err() != nil {
			reason = "context"
		}
		m.log.Info("shutdown requested", "reason", reason)
	case <-m.ctx.Done():
	}
	return m.Shutdown()
}

// Shutdown cancels Context and runs the cleanups newest first, one at a
// time. Later calls return the first call's result.
func (m *Manager) Shutdown() error {
	m.once.Do(func() {
		defer close(m.done)
		m.cancel()

		m.mu.Lock()
		steps := append([]step(nil), m.steps...)
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.log.Info("stopping", "steps", len(steps), "timeout", m.timeout.String())

		var errs []error
		for i := len(steps) - 1; i >= 0; i-- {
			if err := m.run(ctx, steps[i]); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", steps[i].name, err))
			}
		}
		if m.err = stderrors.Join(errs...); m.err == nil {
			m.log.Info("stopped cleanly")
		}
	})
	return m.err
}

// run executes one step unless the shared deadline already passed.
func (m *Manager) run(ctx context.Context, s step) error {
	if err := ctx.Err(); err != nil {
		m.log.Warn("deadline passed, step skipped", "step", s.name)
		return err
	}
	began := time.Now()
	err := s.fn(ctx)
	took := time.Since(began).Milliseconds()
	if err != nil {
		m.log.Error("cleanup step failed", "step", s.name, "error", err.Error(), "took_ms", took)
		return err
	}
	m.log.Debug("cleanup step done", "step", s.name, "took_ms", took)
	return nil
}
