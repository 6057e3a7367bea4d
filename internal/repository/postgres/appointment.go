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

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

// Create inserts the appointment with the column default status and
// writes events in the same transaction.
func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment, events ...*model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (id, patient_id, hospital_id, doctor_id, appointment_date, appointment_time, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING status, to_char(appointment_date, 'YYYY-MM-DD'), to_char(appointment_time, 'HH24:MI'),
			created_at, updated_at
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query,
			a.ID, a.PatientID, a.HospitalID, a.DoctorID,
			a.AppointmentDate, a.AppointmentTime, a.Reason, a.Notes,
		).Scan(&a.Status, &a.AppointmentDate, &a.AppointmentTime, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return err
		}
		return insertOutboxEvents(ctx, tx, events)
	})
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translateError(err))
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.AppointmentDetails, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", len(args)))
	}
	if filter.HospitalID != nil {
		args = append(args, *filter.HospitalID)
		conditions = append(conditions, fmt.Sprintf("a.hospital_id = $%d", len(args)))
	}

	query := `
		SELECT a.id, a.patient_id, a.hospital_id, a.doctor_id,
			to_char(a.appointment_date, 'YYYY-MM-DD') AS appointment_date,
			to_char(a.appointment_time, 'HH24:MI') AS appointment_time,
			a.status, a.reason, a.notes, a.created_at, a.updated_at,
			h.hospital_name, d.name AS doctor_name, pr.full_name AS patient_name
		FROM appointments a
		JOIN hospitals h ON h.id = a.hospital_id
		LEFT JOIN doctors d ON d.id = a.doctor_id
		LEFT JOIN patients p ON p.id = a.patient_id
		LEFT JOIN profiles pr ON pr.id = p.profile_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.appointment_date DESC, a.appointment_time DESC"

	appointments := []*model.AppointmentDetails{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByHospitalOnDate(ctx context.Context, hospitalID uuid.UUID, date string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM appointments WHERE hospital_id = $1 AND appointment_date = $2`
	if err := r.db.GetContext(ctx, &n, query, hospitalID, date); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}
