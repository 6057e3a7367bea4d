package appointment

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
	"github.com/jwalitptl/health-navigator/pkg/messaging"
	"github.com/jwalitptl/health-navigator/pkg/metrics"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

// PatientEnsurer lazily creates the caller's patient row.
type PatientEnsurer interface {
	EnsurePatient(ctx context.Context, profile *model.Profile) (*model.Patient, bool, error)
}

type Service struct {
	appointments repository.AppointmentRepository
	hospitals    repository.HospitalRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	ensurer      PatientEnsurer
	validator    validator.Validator
	metrics      *metrics.Metrics
}

func NewService(appointments repository.AppointmentRepository, hospitals repository.HospitalRepository,
	doctors repository.DoctorRepository, patients repository.PatientRepository, ensurer PatientEnsurer,
	v validator.Validator, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		hospitals:    hospitals,
		doctors:      doctors,
		patients:     patients,
		ensurer:      ensurer,
		validator:    v,
		metrics:      m,
	}
}

// BookedEvent is the outbox payload of appointment.booked.
type BookedEvent struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	HospitalID    uuid.UUID  `json:"hospital_id"`
	DoctorID      *uuid.UUID `json:"doctor_id,omitempty"`
	Date          string     `json:"date"`
	Time          string     `json:"time"`
}

// Book creates a scheduled appointment for a patient. The patient row is
// created first when missing; if the appointment insert then fails, the
// patient row stays.
func (s *Service) Book(ctx context.Context, profile *model.Profile, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if profile.Role != model.RolePatient {
		return nil, apperrors.Forbidden("only patients can book appointments")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	hospitalID := uuid.MustParse(req.HospitalID)
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hospital", err)
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}

	var doctorID *uuid.UUID
	if req.DoctorID != "" {
		id := uuid.MustParse(req.DoctorID)
		doctor, err := s.doctors.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get doctor: %w", err)
		}
		if doctor.HospitalID != hospitalID {
			return nil, apperrors.Validation(map[string]string{"doctor_id": "does not work at the selected hospital"})
		}
		doctorID = &id
	}

	patient, _, err := s.ensurer.EnsurePatient(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare patient record: %w", err)
	}

	appt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		PatientID:       patient.ID,
		HospitalID:      hospitalID,
		DoctorID:        doctorID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Reason:          model.StringPtr(strings.TrimSpace(req.Reason)),
	}

	event, err := model.NewOutboxEvent(messaging.ChannelAppointmentBooked, BookedEvent{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		HospitalID:    appt.HospitalID,
		DoctorID:      appt.DoctorID,
		Date:          appt.AppointmentDate,
		Time:          appt.AppointmentTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event: %w", err)
	}

	if err := s.appointments.Create(ctx, appt, event); err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsBooked.Inc()
	}
	log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("hospital_id", hospitalID.String()).
		Str("date", appt.AppointmentDate).
		Msg("appointment booked")
	return appt, nil
}

// scope narrows the list to what the caller may see. ok is false when the
// caller has no patient or hospital row yet and so has nothing to list.
func (s *Service) scope(ctx context.Context, profile *model.Profile) (filter model.AppointmentFilter, ok bool, err error) {
	switch profile.Role {
	case model.RolePatient:
		patient, err := s.patients.GetByProfileID(ctx, profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return filter, false, nil
		}
		if err != nil {
			return filter, false, fmt.Errorf("failed to get patient: %w", err)
		}
		filter.PatientID = &patient.ID
	case model.RoleHospital:
		hospital, err := s.hospitals.GetByProfileID(ctx, profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return filter, false, nil
		}
		if err != nil {
			return filter, false, fmt.Errorf("failed to get hospital: %w", err)
		}
		filter.HospitalID = &hospital.ID
	default:
		return filter, false, apperrors.Forbidden("appointments are not available for this role")
	}
	return filter, true, nil
}

// List returns the caller's appointments newest first.
func (s *Service) List(ctx context.Context, profile *model.Profile) ([]*model.AppointmentDetails, error) {
	filter, ok, err := s.scope(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*model.AppointmentDetails{}, nil
	}

	list, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return list, nil
}

// ListByDay groups List by date, newest date first.
func (s *Service) ListByDay(ctx context.Context, profile *model.Profile) ([]model.AppointmentDay, error) {
	list, err := s.List(ctx, profile)
	if err != nil {
		return nil, err
	}
	return GroupByDay(list), nil
}

// GroupByDay expects list already ordered by date.
func GroupByDay(list []*model.AppointmentDetails) []model.AppointmentDay {
	days := []model.AppointmentDay{}
	for _, a := range list {
		if n := len(days); n == 0 || days[n-1].Date != a.AppointmentDate {
			days = append(days, model.AppointmentDay{Date: a.AppointmentDate})
		}
		last := &days[len(days)-1]
		last.Appointments = append(last.Appointments, *a)
	}
	return days
}
