package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Processor runs one unit of background work per tick.
type Processor interface {
	Process(ctx context.Context) error
}

// Option configures a Worker.
type Option func(*Worker)

// WithRunOnStart makes the worker run a pass before the first tick.
func WithRunOnStart() Option {
	return func(w *Worker) { w.runOnStart = true }
}

// WithPassTimeout bounds each pass. Zero leaves passes unbounded.
func WithPassTimeout(d time.Duration) Option {
	return func(w *Worker) { w.passTimeout = d }
}

// Worker calls a Processor on a fixed interval until stopped.
type Worker struct {
	processor   Processor
	interval    time.Duration
	runOnStart  bool
	passTimeout time.Duration
	logger      *slog.Logger

	failures int
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWorker creates a Worker. A nil logger uses slog.Default.
func NewWorker(processor Processor, interval time.Duration, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		processor: processor,
		interval:  interval,
		logger:    logger.With("component", "worker"),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start blocks, running passes until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("worker started", "interval", w.interval, "run_on_start", w.runOnStart)

	if w.runOnStart {
		w.pass(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped", "reason", "context cancelled")
			return
		case <-w.stopCh:
			w.logger.Info("worker stopped", "reason", "stop signal")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *Worker) pass(ctx context.Context) {
	if w.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.passTimeout)
		defer cancel()
	}

	if err := w.processor.Process(ctx); err != nil {
		w.failures++
		level := slog.LevelWarn
		if w.failures >= 3 {
			level = slog.LevelError
		}
		w.logger.Log(ctx, level, "pass failed", "error", err, "consecutive_failures", w.failures)
		return
	}
	w.failures = 0
}

// Stop signals the loop and waits for the current pass to finish. Safe to call twice.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}
