package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const identityColumns = `id, email, password_hash, raw_metadata, email_confirmed_at, created_at, updated_at`

type identityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	query := `
		INSERT INTO identities (id, email, password_hash, raw_metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	identity.Email = strings.ToLower(identity.Email)

	err := r.db.QueryRowxContext(ctx, query,
		identity.ID,
		identity.Email,
		identity.PasswordHash,
		identity.Metadata,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", translateError(err))
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	var identity model.Identity
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	if err := r.db.GetContext(ctx, &identity, query, id); err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", translateError(err))
	}
	return &identity, nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
	if err := r.db.GetContext(ctx, &identity, query, strings.ToLower(email)); err != nil {
		return nil, fmt.Errorf("failed to get identity by email: %w", translateError(err))
	}
	return &identity, nil
}

func (r *identityRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE identities
		SET email_confirmed_at = COALESCE(email_confirmed_at, $1), updated_at = NOW()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to confirm identity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to confirm identity: %w", repository.ErrNotFound)
	}
	return nil
}
