package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/pkg/logger"
)

// OutboxCleanupWorker deletes processed outbox events older than the
// retention window.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *OutboxCleanupWorker) RunOnce(ctx context.Context) int64 {
	n, err := w.repo.DeleteProcessedBefore(ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.logger.Error(err, "Failed to clean up outbox events")
		return 0
	}
	if n > 0 {
		w.logger.Info("Cleaned up outbox events", "deleted", n)
	}
	return n
}
