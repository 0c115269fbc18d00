// Package purge evicts stale travel-time estimates on a timer.
package purge

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/scheduleterp/server/internal/observability"
)

// Purger removes stale travel-time estimates and reports how many went away.
type Purger interface {
	PurgeStale(ctx context.Context) (int, error)
}

type Runner struct {
	purger   Purger
	interval time.Duration
}

// NewRunner creates a purge runner. A non-positive interval defaults to one hour.
func NewRunner(purger Purger, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{
		purger:   purger,
		interval: interval,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("travel-time purge runner stopped")
			return
		}
	}
}

// RunOnce purges once (for manual trigger). Each pass logs under its own
// request ID so store warnings can be traced back to it.
func (r *Runner) RunOnce(ctx context.Context) {
	reqCtx := observability.NewRequestContext(slog.Default(), "purge")
	ctx = observability.WithRequestContext(ctx, reqCtx)

	removed, err := r.purger.PurgeStale(ctx)
	if err != nil {
		reqCtx.Error("failed to purge stale travel times", err,
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
		return
	}
	if removed == 0 {
		reqCtx.Debug("no stale travel times")
		return
	}
	reqCtx.Info("purged stale travel times",
		slog.Int("count", removed),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
}
