package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

type locationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) List(ctx context.Context) ([]*model.Location, error) {
	locations := []*model.Location{}
	query := `SELECT id, name, state, district, type, created_at FROM locations ORDER BY name`
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (r *locationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var l model.Location
	query := `SELECT id, name, state, district, type, created_at FROM locations WHERE id = $1`
	if err := r.db.GetContext(ctx, &l, query, id); err != nil {
		return nil, fmt.Errorf("failed to get location: %w", translateError(err))
	}
	return &l, nil
}
