package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger deletes session values not written since a cutoff.
type SessionPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeSessionsDeps holds dependencies for PurgeSessions.
type PurgeSessionsDeps struct {
	Store  SessionPurger
	MaxAge time.Duration
	Now    func() time.Time
}

// ExecutePurgeSessions removes browser session values idle for longer than MaxAge.
// PRE: deps.MaxAge > 0
// POST: values of sessions unused since Now-MaxAge are gone; returns how many went
func ExecutePurgeSessions(ctx context.Context, deps PurgeSessionsDeps) (int64, error) {
	if deps.MaxAge <= 0 {
		return 0, fmt.Errorf("purge sessions: max age must be positive")
	}
	cutoff := deps.Now().Add(-deps.MaxAge)
	n, err := deps.Store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		slog.Info("session_event", "event", "purged", "values", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// StartBackgroundWorker runs task every interval in its own goroutine.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(name string, task func(ctx context.Context) error, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := task(ctx); err != nil {
					slog.Error("background_task_failed", "worker", name, "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("background_worker_stopped", "worker", name)
				return
			}
		}
	}()
}
