package medical

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
	"github.com/jwalitptl/health-navigator/pkg/security"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

// HospitalLookup resolves the caller's own hospital.
type HospitalLookup interface {
	ForProfile(ctx context.Context, profile *model.Profile) (*model.Hospital, error)
}

type Service struct {
	records   repository.MedicalRecordRepository
	patients  repository.PatientRepository
	doctors   repository.DoctorRepository
	hospitals HospitalLookup
	cipher    *security.FieldCipher
	validator validator.Validator
}

// NewService wires the medical record service. A nil cipher stores the
// free-text fields in the clear.
func NewService(records repository.MedicalRecordRepository, patients repository.PatientRepository,
	doctors repository.DoctorRepository, hospitals HospitalLookup, cipher *security.FieldCipher,
	v validator.Validator) *Service {
	return &Service{
		records:   records,
		patients:  patients,
		doctors:   doctors,
		hospitals: hospitals,
		cipher:    cipher,
		validator: v,
	}
}

// Create records a visit at the caller's hospital.
func (s *Service) Create(ctx context.Context, profile *model.Profile, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if profile.Role != model.RoleHospital {
		return nil, apperrors.Forbidden("only hospitals can add medical records")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	hospital, err := s.hospitals.ForProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	patientID := uuid.MustParse(req.PatientID)
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation(map[string]string{"patient_id": "unknown patient"})
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	record := &model.MedicalRecord{
		ID:          uuid.New(),
		PatientID:   patientID,
		HospitalID:  hospital.ID,
		VisitDate:   req.VisitDate,
		Diagnosis:   model.StringPtr(strings.TrimSpace(req.Diagnosis)),
		Treatment:   model.StringPtr(strings.TrimSpace(req.Treatment)),
		Medications: req.Medications,
		LabResults:  model.StringPtr(strings.TrimSpace(req.LabResults)),
		Notes:       model.StringPtr(strings.TrimSpace(req.Notes)),
	}
	if req.DoctorID != "" {
		id := uuid.MustParse(req.DoctorID)
		doc, err := s.doctors.GetByID(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get doctor: %w", err)
		}
		if err != nil || doc.HospitalID != hospital.ID {
			return nil, apperrors.Validation(map[string]string{"doctor_id": "doctor does not belong to this hospital"})
		}
		record.DoctorID = &id
	}
	if req.AppointmentID != "" {
		id := uuid.MustParse(req.AppointmentID)
		record.AppointmentID = &id
	}

	sealed := *record
	if err := s.seal(&sealed); err != nil {
		return nil, fmt.Errorf("failed to encrypt medical record: %w", err)
	}
	if err := s.records.Create(ctx, &sealed); err != nil {
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}
	record.CreatedAt = sealed.CreatedAt

	log.Info().
		Str("record_id", record.ID.String()).
		Str("patient_id", patientID.String()).
		Str("hospital_id", hospital.ID.String()).
		Msg("medical record created")
	return record, nil
}

// ListByPatient returns a patient's records, latest visit first. Patients
// only ever see their own; patientID is ignored for them.
func (s *Service) ListByPatient(ctx context.Context, profile *model.Profile, patientID string) ([]*model.MedicalRecord, error) {
	var id uuid.UUID
	switch profile.Role {
	case model.RoleHospital:
		parsed, err := uuid.Parse(patientID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid patient id", err)
		}
		id = parsed
	case model.RolePatient:
		p, err := s.patients.GetByProfileID(ctx, profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return []*model.MedicalRecord{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get patient: %w", err)
		}
		id = p.ID
	default:
		return nil, apperrors.Forbidden("medical records are not available for this role")
	}

	records, err := s.records.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	for _, r := range records {
		if err := s.open(r); err != nil {
			return nil, fmt.Errorf("failed to decrypt record %s: %w", r.ID, err)
		}
	}
	return records, nil
}

func (s *Service) seal(r *model.MedicalRecord) error {
	for _, f := range []**string{&r.Diagnosis, &r.Treatment, &r.LabResults, &r.Notes} {
		v, err := s.cipher.Seal(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

func (s *Service) open(r *model.MedicalRecord) error {
	for _, f := range []**string{&r.Diagnosis, &r.Treatment, &r.LabResults, &r.Notes} {
		v, err := s.cipher.Open(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
