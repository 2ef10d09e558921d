// Package schedule runs the report pipeline once or on a fixed interval.
// It does not generate or send anything itself; it invokes a callback
// when a run is due.
package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner triggers report runs. A zero interval means a single immediate
// run; otherwise the first run is immediate and subsequent runs fire on
// the ticker until the context is cancelled.
type Runner struct {
	interval time.Duration
	logger   *zap.Logger
}

// New creates a Runner with the given interval.
func New(interval time.Duration, logger *zap.Logger) *Runner {
	return &Runner{interval: interval, logger: logger}
}

// Start invokes run immediately, then on every tick. It blocks until the
// context is cancelled (or returns after the first run when no interval
// is configured).
func (r *Runner) Start(ctx context.Context, run func(ctx context.Context)) {
	run(ctx)

	if r.interval <= 0 {
		return
	}

	r.logger.Info("Scheduling recurring runs", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}
