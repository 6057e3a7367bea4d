package hospital

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
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

// ErrNotRegistered means a hospital-role profile has no hospital row yet.
var ErrNotRegistered = errors.New("hospital not registered")

type Service struct {
	hospitals repository.HospitalRepository
	locations repository.LocationRepository
	validator validator.Validator
}

func NewService(hospitals repository.HospitalRepository, locations repository.LocationRepository, v validator.Validator) *Service {
	return &Service{hospitals: hospitals, locations: locations, validator: v}
}

// ForProfile returns the single hospital owned by profile.
func (s *Service) ForProfile(ctx context.Context, profile *model.Profile) (*model.Hospital, error) {
	if profile.Role != model.RoleHospital {
		return nil, apperrors.Forbidden("hospital role required")
	}
	h, err := s.hospitals.GetByProfileID(ctx, profile.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &apperrors.AppError{Code: apperrors.ErrNotFound, Message: ErrNotRegistered.Error(), Err: ErrNotRegistered}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return h, nil
}

// Register creates the caller's hospital or updates it when it already
// exists. created reports which one happened.
func (s *Service) Register(ctx context.Context, profile *model.Profile, req *model.RegisterHospitalRequest) (h *model.Hospital, created bool, err error) {
	if profile.Role != model.RoleHospital {
		return nil, false, apperrors.Forbidden("hospital role required")
	}
	trim(req)
	if err := s.validator.Validate(req); err != nil {
		return nil, false, validator.AsAppError(err)
	}

	locationID := uuid.MustParse(req.LocationID)
	if _, err := s.locations.GetByID(ctx, locationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperrors.Validation(map[string]string{"location_id": "unknown location"})
		}
		return nil, false, fmt.Errorf("failed to get location: %w", err)
	}

	existing, err := s.hospitals.GetByProfileID(ctx, profile.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get hospital: %w", err)
	}

	if existing == nil {
		h = &model.Hospital{ProfileID: profile.ID}
		apply(h, req, locationID)
		err = s.hospitals.Create(ctx, h)
		if err == nil {
			log.Info().Str("hospital_id", h.ID.String()).Str("profile_id", profile.ID.String()).Msg("hospital registered")
			return h, true, nil
		}
		if !repository.IsConstraint(err, repository.ConstraintHospitalProfile) {
			return nil, false, fmt.Errorf("failed to create hospital: %w", err)
		}
		// Registered concurrently; fall through to update it.
		existing, err = s.hospitals.GetByProfileID(ctx, profile.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to re-read hospital: %w", err)
		}
	}

	apply(existing, req, locationID)
	if err := s.hospitals.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("failed to update hospital: %w", err)
	}
	return existing, false, nil
}

func trim(req *model.RegisterHospitalRequest) {
	req.HospitalName = strings.TrimSpace(req.HospitalName)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.EmergencyContact = strings.TrimSpace(req.EmergencyContact)
	req.LocationID = strings.TrimSpace(req.LocationID)
	for i, spec := range req.Specializations {
		req.Specializations[i] = strings.TrimSpace(spec)
	}
}

func apply(h *model.Hospital, req *model.RegisterHospitalRequest, locationID uuid.UUID) {
	h.HospitalName = req.HospitalName
	h.Address = req.Address
	h.Phone = req.Phone
	h.Email = model.StringPtr(req.Email)
	h.EmergencyContact = model.StringPtr(req.EmergencyContact)
	h.LocationID = locationID
	h.Specializations = req.Specializations
}

// List returns every hospital ordered by name.
func (s *Service) List(ctx context.Context) ([]*model.Hospital, error) {
	list, err := s.hospitals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return list, nil
}
