package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

type medicalRecordRepository struct {
	db *sqlx.DB
}

func NewMedicalRecordRepository(db *sqlx.DB) repository.MedicalRecordRepository {
	return &medicalRecordRepository{db: db}
}

func (r *medicalRecordRepository) Create(ctx context.Context, m *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, patient_id, hospital_id, doctor_id, appointment_id, visit_date,
			diagnosis, treatment, medications, lab_results, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err := r.db.QueryRowxContext(ctx, query,
		m.ID, m.PatientID, m.HospitalID, m.DoctorID, m.AppointmentID, m.VisitDate,
		m.Diagnosis, m.Treatment, m.Medications, m.LabResults, m.Notes,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", translateError(err))
	}
	return nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, appointment_id,
			to_char(visit_date, 'YYYY-MM-DD') AS visit_date,
			diagnosis, treatment, medications, lab_results, notes, created_at
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY visit_date DESC, created_at DESC
	`
	records := []*model.MedicalRecord{}
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to get medical records: %w", err)
	}
	return records, nil
}
