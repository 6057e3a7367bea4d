package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

// GetPendingEventsWithLock claims up to limit pending events, oldest first.
// Rows locked by another worker are skipped.
func (r *outboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET retry_count = retry_count + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $1
			ORDER BY created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_type, payload, status, error_message, retry_count, created_at, updated_at, processed_at
	`
	events := []*model.OutboxEvent{}
	if err := r.db.SelectContext(ctx, &events, query, string(model.OutboxStatusPending), limit); err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	query := `
		UPDATE outbox_events
		SET status = $1,
			error_message = $2,
			processed_at = CASE WHEN $1 = 'PROCESSED' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, string(status), errMsg, id); err != nil {
		return fmt.Errorf("failed to update outbox event status: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'PROCESSED'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
