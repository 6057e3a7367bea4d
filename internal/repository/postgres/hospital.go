package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const hospitalColumns = `id, profile_id, hospital_name, address, phone, email, emergency_contact,
	location_id, specializations, is_verified, created_at, updated_at`

type hospitalRepository struct {
	db *sqlx.DB
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Create(ctx context.Context, h *model.Hospital) error {
	query := `
		INSERT INTO hospitals (
			id, profile_id, hospital_name, address, phone, email,
			emergency_contact, location_id, specializations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING is_verified, created_at, updated_at
	`
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	err := r.db.QueryRowxContext(ctx, query,
		h.ID, h.ProfileID, h.HospitalName, h.Address, h.Phone, h.Email,
		h.EmergencyContact, h.LocationID, h.Specializations,
	).Scan(&h.IsVerified, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", translateError(err))
	}
	return nil
}

func (r *hospitalRepository) Update(ctx context.Context, h *model.Hospital) error {
	query := `
		UPDATE hospitals
		SET hospital_name = $1, address = $2, phone = $3, email = $4,
			emergency_contact = $5, location_id = $6, specializations = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING is_verified, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		h.HospitalName, h.Address, h.Phone, h.Email,
		h.EmergencyContact, h.LocationID, h.Specializations, h.ID,
	).Scan(&h.IsVerified, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", translateError(err))
	}
	return nil
}

func (r *hospitalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	var h model.Hospital
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1`
	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", translateError(err))
	}
	return &h, nil
}

func (r *hospitalRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID) (*model.Hospital, error) {
	var h model.Hospital
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE profile_id = $1`
	if err := r.db.GetContext(ctx, &h, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to get hospital by profile: %w", translateError(err))
	}
	return &h, nil
}

func (r *hospitalRepository) List(ctx context.Context) ([]*model.Hospital, error) {
	hospitals := []*model.Hospital{}
	query := `SELECT ` + hospitalColumns + ` FROM hospitals ORDER BY hospital_name`
	if err := r.db.SelectContext(ctx, &hospitals, query); err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}
