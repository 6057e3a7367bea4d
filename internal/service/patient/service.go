package patient

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

// ErrNoMatchingProfile is returned when neither the phone nor the username
// of an add-patient request matches a profile. Nothing is written.
var ErrNoMatchingProfile = errors.New("no matching profile")

type Service struct {
	patients  repository.PatientRepository
	profiles  repository.ProfileRepository
	validator validator.Validator
	metrics   *metrics.Metrics
}

func NewService(patients repository.PatientRepository, profiles repository.ProfileRepository, v validator.Validator, m *metrics.Metrics) *Service {
	return &Service{patients: patients, profiles: profiles, validator: v, metrics: m}
}

// LinkedEvent is the outbox payload of patient.linked.
type LinkedEvent struct {
	PatientID       uuid.UUID `json:"patient_id"`
	ProfileID       uuid.UUID `json:"profile_id"`
	LinkedByProfile uuid.UUID `json:"linked_by_profile_id"`
	MatchedOnPhone  bool      `json:"matched_on_phone"`
}

// Add links an existing profile as a patient, found by phone first and then
// by username. An existing patient row is returned with Created false.
func (s *Service) Add(ctx context.Context, caller *model.Profile, req *model.AddPatientRequest) (*model.AddPatientResult, error) {
	if caller.Role != model.RoleHospital {
		return nil, apperrors.Forbidden("only hospitals can add patients")
	}
	req.Phone = strings.TrimSpace(req.Phone)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	profile, byPhone, err := s.match(ctx, req)
	if err != nil {
		return nil, err
	}
	if profile.Role != model.RolePatient {
		return nil, apperrors.BadRequest("the matching profile is not a patient", nil)
	}

	existing, err := s.patients.GetByProfileID(ctx, profile.ID)
	if err == nil {
		return &model.AddPatientResult{Patient: existing, Created: false}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, ProfileID: profile.ID}
	event, err := model.NewOutboxEvent(messaging.ChannelPatientLinked, LinkedEvent{
		PatientID:       patient.ID,
		ProfileID:       profile.ID,
		LinkedByProfile: caller.ID,
		MatchedOnPhone:  byPhone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event: %w", err)
	}

	err = s.patients.Create(ctx, patient, event)
	if repository.IsConstraint(err, repository.ConstraintPatientProfile) {
		existing, rerr := s.patients.GetByProfileID(ctx, profile.ID)
		if rerr != nil {
			return nil, fmt.Errorf("failed to re-read patient: %w", rerr)
		}
		return &model.AddPatientResult{Patient: existing, Created: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PatientsLinked.Inc()
	}
	log.Info().Str("patient_id", patient.ID.String()).Str("profile_id", profile.ID.String()).Msg("patient linked")
	return &model.AddPatientResult{Patient: patient, Created: true}, nil
}

// match prefers a patient found by phone. A phone shared with a non-patient
// profile falls through to the username; that profile is returned only when
// nothing else matches.
func (s *Service) match(ctx context.Context, req *model.AddPatientRequest) (*model.Profile, bool, error) {
	var byPhone *model.Profile
	if req.Phone != "" {
		p, err := s.profiles.FindByPhone(ctx, req.Phone)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to look up profile by phone: %w", err)
		}
		if err == nil {
			if p.Role == model.RolePatient {
				return p, true, nil
			}
			byPhone = p
		}
	}
	if req.Username != "" {
		p, err := s.profiles.FindByUsername(ctx, req.Username)
		if err == nil {
			return p, false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to look up profile by username: %w", err)
		}
	}
	if byPhone != nil {
		return byPhone, true, nil
	}
	return nil, false, &apperrors.AppError{Code: apperrors.ErrNotFound, Message: ErrNoMatchingProfile.Error(), Err: ErrNoMatchingProfile}
}

// List returns patients with their profile fields, optionally filtered by
// a substring of name, username or phone.
func (s *Service) List(ctx context.Context, caller *model.Profile, search string) ([]*model.PatientDetails, error) {
	if caller.Role != model.RoleHospital {
		return nil, apperrors.Forbidden("only hospitals can list patients")
	}
	list, err := s.patients.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return list, nil
}

// Count is the total number of patient rows.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.patients.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}
