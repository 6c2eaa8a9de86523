// Package tasks runs fire-and-forget side effects detached from the request
// that triggered them.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/telemetry"
)

var ErrClosed = errors.New("task runner is shut down")

type Func func(ctx context.Context) error

type Runner struct {
	log     *slog.Logger
	timeout time.Duration
	sem     chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(logger *slog.Logger, concurrency int, timeout time.Duration) *Runner {
	if concurrency < 1 {
		concurrency = 8
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		log:     logger.With("component", "tasks"),
		timeout: timeout,
		sem:     make(chan struct{}, concurrency),
	}
}

// Go schedules fn and returns immediately. The task keeps the caller's
// context values (request logger, trace) but not its cancellation.
func (r *Runner) Go(ctx context.Context, name string, fn Func) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		logging.FromContext(ctx).Warn("task_rejected", "task", name, "error", ErrClosed)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go r.run(detached, name, fn)
}

func (r *Runner) run(ctx context.Context, name string, fn Func) {
	defer r.wg.Done()

	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	l := logging.FromContext(ctx).With("task", name)
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.TaskPanicked(name)
			l.Error("task_panic", "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	telemetry.TaskFinished(name, time.Since(start), err)
	if err != nil {
		l.Warn("task_failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return
	}
	l.Debug("task_done", "duration_ms", time.Since(start).Milliseconds())
}

// Wait blocks until every scheduled task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown stops accepting tasks and drains the running ones until ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("tasks_drained")
		return nil
	case <-ctx.Done():
		r.log.Warn("tasks_drain_timeout", "error", ctx.Err())
		return ctx.Err()
	}
}
