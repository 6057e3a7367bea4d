package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
)

const emergencyDetailsQuery = `
	SELECT e.id, e.patient_id, e.location_id, e.alert_type, e.status, e.patient_location,
		e.contact_number, e.description, e.responded_by, e.response_time, e.created_at,
		pr.full_name AS patient_name, l.name AS location_name
	FROM emergency_alerts e
	JOIN patients p ON p.id = e.patient_id
	JOIN profiles pr ON pr.id = p.profile_id
	JOIN locations l ON l.id = e.location_id`

type emergencyRepository struct {
	BaseRepository
}

func NewEmergencyRepository(base BaseRepository) repository.EmergencyRepository {
	return &emergencyRepository{base}
}

func (r *emergencyRepository) Create(ctx context.Context, e *model.EmergencyAlert, events ...*model.OutboxEvent) error {
	query := `
		INSERT INTO emergency_alerts (
			id, patient_id, location_id, alert_type, patient_location, contact_number, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING status, created_at
	`
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query,
			e.ID, e.PatientID, e.LocationID, string(e.AlertType),
			e.PatientLocation, e.ContactNumber, e.Description,
		).Scan(&e.Status, &e.CreatedAt); err != nil {
			return err
		}
		return insertOutboxEvents(ctx, tx, events)
	})
	if err != nil {
		return fmt.Errorf("failed to create emergency alert: %w", translateError(err))
	}
	return nil
}

func (r *emergencyRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.EmergencyAlertDetails, error) {
	var alert model.EmergencyAlertDetails
	if err := r.db.GetContext(ctx, &alert, emergencyDetailsQuery+` WHERE e.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get emergency alert: %w", translateError(err))
	}
	return &alert, nil
}

// List returns alerts newest first, all of them when patientID is nil.
func (r *emergencyRepository) List(ctx context.Context, patientID *uuid.UUID) ([]*model.EmergencyAlertDetails, error) {
	alerts := []*model.EmergencyAlertDetails{}
	var err error
	if patientID == nil {
		err = r.db.SelectContext(ctx, &alerts, emergencyDetailsQuery+` ORDER BY e.created_at DESC`)
	} else {
		err = r.db.SelectContext(ctx, &alerts, emergencyDetailsQuery+` WHERE e.patient_id = $1 ORDER BY e.created_at DESC`, *patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency alerts: %w", err)
	}
	return alerts, nil
}

func (r *emergencyRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM emergency_alerts WHERE status = $1`
	if err := r.db.GetContext(ctx, &n, query, string(model.EmergencyStatusActive)); err != nil {
		return 0, fmt.Errorf("failed to count active emergencies: %w", err)
	}
	return n, nil
}
