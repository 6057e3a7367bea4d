package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const doctorColumns = `d.id, d.hospital_id, d.name, d.specialization, d.qualification, d.experience_years,
	d.available_days, d.available_hours, d.consultation_fee, d.created_at, d.updated_at`

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, hospital_id, name, specialization, qualification, experience_years,
			available_days, available_hours, consultation_fee
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := r.db.QueryRowxContext(ctx, query,
		d.ID, d.HospitalID, d.Name, d.Specialization, d.Qualification, d.ExperienceYears,
		d.AvailableDays, d.AvailableHours, d.ConsultationFee,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", translateError(err))
	}
	return nil
}

func (r *doctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	query := `SELECT ` + doctorColumns + ` FROM doctors d WHERE d.id = $1`
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", translateError(err))
	}
	return &d, nil
}

func (r *doctorRepository) List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorListing, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Query != "" {
		args = append(args, likePattern(filter.Query))
		conditions = append(conditions, fmt.Sprintf("(d.name ILIKE $%d OR d.specialization ILIKE $%d)", len(args), len(args)))
	}
	if filter.Specialization != "" {
		args = append(args, filter.Specialization)
		conditions = append(conditions, fmt.Sprintf("d.specialization = $%d", len(args)))
	}
	if filter.HospitalID != nil {
		args = append(args, *filter.HospitalID)
		conditions = append(conditions, fmt.Sprintf("d.hospital_id = $%d", len(args)))
	}

	query := `SELECT ` + doctorColumns + `, h.hospital_name
		FROM doctors d
		JOIN hospitals h ON h.id = d.hospital_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY d.name"

	doctors := []*model.DoctorListing{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) CountByHospital(ctx context.Context, hospitalID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM doctors WHERE hospital_id = $1`, hospitalID); err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return n, nil
}

func (r *doctorRepository) ListSpecializations(ctx context.Context) ([]string, error) {
	specs := []string{}
	if err := r.db.SelectContext(ctx, &specs, `SELECT DISTINCT specialization FROM doctors ORDER BY specialization`); err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	return specs, nil
}
