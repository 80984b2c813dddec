package core

// scheduler.go runs import history retention on a cron schedule.
//
// Pruning failures are logged and never stop the scheduler; the next run
// simply tries again.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// PruneConfig holds history retention settings.
type PruneConfig struct {
	Schedule  string        // cron spec or descriptor, e.g. "@daily"
	Retention time.Duration // records older than this are deleted
}

// PruneHistory deletes records older than retention relative to now.
func PruneHistory(ctx context.Context, store HistoryStore, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return store.Prune(ctx, now.Add(-retention))
}

// StartHistoryPruner schedules PruneHistory and returns the running cron.
// It is stopped when ctx is cancelled; callers may also Stop it directly.
func StartHistoryPruner(ctx context.Context, store HistoryStore, cfg PruneConfig) (*cron.Cron, error) {
	logger := cronLogger{slog.Default().With("job", "history_prune")}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	_, err := c.AddFunc(cfg.Schedule, func() {
		start := time.Now()
		n, err := PruneHistory(ctx, store, cfg.Retention, start)
		if err != nil {
			slog.Error("history prune failed", "error", err)
			return
		}
		slog.Info("history pruned",
			"entries_deleted", n,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("history prune schedule %q: %w", cfg.Schedule, err)
	}

	c.Start()
	slog.Info("history pruner started", "schedule", cfg.Schedule, "retention", cfg.Retention)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		slog.Info("history pruner stopped")
	}()
	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
