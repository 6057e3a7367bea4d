package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const patientColumns = `p.id, p.profile_id, to_char(p.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
	p.gender, p.blood_group, p.allergies, p.medical_conditions,
	p.emergency_contact_name, p.emergency_contact_phone, p.created_at, p.updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient, events ...*model.OutboxEvent) error {
	query := `
		INSERT INTO patients (
			id, profile_id, date_of_birth, gender, blood_group, allergies,
			medical_conditions, emergency_contact_name, emergency_contact_phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query,
			patient.ID,
			patient.ProfileID,
			patient.DateOfBirth,
			patient.Gender,
			patient.BloodGroup,
			patient.Allergies,
			patient.MedicalConditions,
			patient.EmergencyContactName,
			patient.EmergencyContactPhone,
		).Scan(&patient.CreatedAt, &patient.UpdatedAt); err != nil {
			return err
		}
		return insertOutboxEvents(ctx, tx, events)
	})
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", translateError(err))
	}
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients p WHERE p.id = $1`
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translateError(err))
	}
	return &patient, nil
}

func (r *patientRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients p WHERE p.profile_id = $1`
	if err := r.db.GetContext(ctx, &patient, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to get patient by profile: %w", translateError(err))
	}
	return &patient, nil
}

func (r *patientRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

// List matches search against full name, username and phone.
func (r *patientRepository) List(ctx context.Context, search string) ([]*model.PatientDetails, error) {
	query := `
		SELECT ` + patientColumns + `, pr.username, pr.full_name, pr.phone
		FROM patients p
		JOIN profiles pr ON pr.id = p.profile_id
		WHERE $1 = ''
			OR pr.full_name ILIKE $2
			OR pr.username ILIKE $2
			OR COALESCE(pr.phone, '') ILIKE $2
		ORDER BY p.created_at DESC
	`
	patients := []*model.PatientDetails{}
	if err := r.db.SelectContext(ctx, &patients, query, search, likePattern(search)); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
