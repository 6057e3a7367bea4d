package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &repository.ConflictError{Constraint: pqErr.Constraint}
	}
	return err
}

func insertOutboxEvents(ctx context.Context, tx *sqlx.Tx, events []*model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if err := tx.QueryRowxContext(ctx, query, ev.ID, ev.EventType, string(ev.Payload), ev.Status).
			Scan(&ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
	}
	return nil
}

// likePattern escapes a user search term for ILIKE.
func likePattern(term string) string {
	escaped := make([]rune, 0, len(term)+2)
	escaped = append(escaped, '%')
	for _, r := range term {
		if r == '%' || r == '_' || r == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return string(append(escaped, '%'))
}
