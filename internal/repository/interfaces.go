package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/model"
)

var (
	// ErrNotFound is returned by every single-row lookup that matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("record already exists")
)

// ConflictError names the unique constraint that rejected a write.
// errors.Is(err, ErrConflict) holds for every ConflictError.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("record already exists (%s)", e.Constraint)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Unique constraints callers branch on.
const (
	ConstraintIdentityEmail   = "identities_email_key"
	ConstraintProfileIdentity = "profiles_identity_id_key"
	ConstraintProfileUsername = "profiles_username_key"
	ConstraintPatientProfile  = "patients_profile_id_key"
	ConstraintHospitalProfile = "hospitals_profile_id_key"
)

// IsConstraint reports whether err is a conflict on the named constraint.
func IsConstraint(err error, constraint string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Constraint == constraint
}

// All repository interfaces in one file
type (
	IdentityRepository interface {
		Create(ctx context.Context, identity *model.Identity) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
		GetByEmail(ctx context.Context, email string) (*model.Identity, error)
		MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	ProfileRepository interface {
		Create(ctx context.Context, profile *model.Profile) error
		GetByIdentityID(ctx context.Context, identityID uuid.UUID) (*model.Profile, error)
		FindByPhone(ctx context.Context, phone string) (*model.Profile, error)
		FindByUsername(ctx context.Context, username string) (*model.Profile, error)
		Update(ctx context.Context, profile *model.Profile) error
	}

	// PatientRepository.Create writes the patient and any outbox events in
	// one transaction.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient, events ...*model.OutboxEvent) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByProfileID(ctx context.Context, profileID uuid.UUID) (*model.Patient, error)
		Count(ctx context.Context) (int, error)
		List(ctx context.Context, search string) ([]*model.PatientDetails, error)
	}

	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Update(ctx context.Context, hospital *model.Hospital) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		GetByProfileID(ctx context.Context, profileID uuid.UUID) (*model.Hospital, error)
		List(ctx context.Context) ([]*model.Hospital, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorListing, error)
		CountByHospital(ctx context.Context, hospitalID uuid.UUID) (int, error)
		ListSpecializations(ctx context.Context) ([]string, error)
	}

	// AppointmentRepository lists newest first: date desc, then time desc.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment, events ...*model.OutboxEvent) error
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.AppointmentDetails, error)
		CountByHospitalOnDate(ctx context.Context, hospitalID uuid.UUID, date string) (int, error)
	}

	EmergencyRepository interface {
		Create(ctx context.Context, alert *model.EmergencyAlert, events ...*model.OutboxEvent) error
		GetDetails(ctx context.Context, id uuid.UUID) (*model.EmergencyAlertDetails, error)
		List(ctx context.Context, patientID *uuid.UUID) ([]*model.EmergencyAlertDetails, error)
		CountActive(ctx context.Context) (int, error)
	}

	LocationRepository interface {
		List(ctx context.Context) ([]*model.Location, error)
		GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
	}

	OutboxRepository interface {
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
