package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const profileColumns = `id, identity_id, username, full_name, phone, user_type, location_id, created_at, updated_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, identity_id, username, full_name, phone, user_type, location_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	err := r.db.QueryRowxContext(ctx, query,
		profile.ID,
		profile.IdentityID,
		profile.Username,
		profile.FullName,
		profile.Phone,
		string(profile.Role),
		profile.LocationID,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", translateError(err))
	}
	return nil
}

func (r *profileRepository) GetByIdentityID(ctx context.Context, identityID uuid.UUID) (*model.Profile, error) {
	return r.getOne(ctx, "identity_id = $1", identityID)
}

// FindByPhone returns the oldest profile registered with phone.
func (r *profileRepository) FindByPhone(ctx context.Context, phone string) (*model.Profile, error) {
	return r.getOne(ctx, "phone = $1", phone)
}

func (r *profileRepository) FindByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *profileRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.Profile, error) {
	var profile model.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE ` + where + ` ORDER BY created_at LIMIT 1`
	if err := r.db.GetContext(ctx, &profile, query, arg); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", translateError(err))
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	query := `
		UPDATE profiles
		SET username = $1, full_name = $2, phone = $3, location_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		profile.Username,
		profile.FullName,
		profile.Phone,
		profile.LocationID,
		profile.ID,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", translateError(err))
	}
	return nil
}
