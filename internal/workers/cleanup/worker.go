package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker drops stale conversation sessions and expired gate cache entries on
// a schedule.
type Worker struct {
	storage    sessionStorage
	caches     []expiringCache
	sessionTTL time.Duration
	schedule   string
	logger     *slog.Logger
	cron       *cron.Cron
}

func NewWorker(storage sessionStorage, sessionTTL time.Duration, schedule string, logger *slog.Logger, caches ...expiringCache) *Worker {
	return &Worker{
		storage:    storage,
		caches:     caches,
		sessionTTL: sessionTTL,
		schedule:   schedule,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Name returns the worker name
func (w *Worker) Name() string {
	return "cleanup"
}

// Start schedules the worker.
func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		ctx := context.Background()
		w.logger.Info("Running cleanup worker")
		if err := w.run(ctx); err != nil {
			w.logger.Error("Cleanup worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup worker: %w", err)
	}

	w.cron.Start()
	return nil
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping cleanup worker")
	w.cron.Stop()
}

func (w *Worker) run(ctx context.Context) error {
	removed, err := w.storage.PurgeStaleSessions(ctx, w.sessionTTL)
	if err != nil {
		return fmt.Errorf("purge stale sessions: %w", err)
	}

	purged := 0
	for _, cache := range w.caches {
		purged += cache.PurgeExpired()
	}

	w.logger.Info("Cleanup worker execution completed",
		"stale_sessions", removed,
		"expired_cache_entries", purged)
	return nil
}
