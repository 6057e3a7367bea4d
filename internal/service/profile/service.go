package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/repository"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
	"github.com/jwalitptl/health-navigator/pkg/validator"
)

// Service edits an existing profile. The role is never editable.
type Service struct {
	profiles  repository.ProfileRepository
	validator validator.Validator
}

func NewService(profiles repository.ProfileRepository, v validator.Validator) *Service {
	return &Service{profiles: profiles, validator: v}
}

func (s *Service) Get(ctx context.Context, identityID uuid.UUID) (*model.Profile, error) {
	profile, err := s.profiles.GetByIdentityID(ctx, identityID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("profile", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *Service) Update(ctx context.Context, identityID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.LocationID = strings.TrimSpace(req.LocationID)
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	profile, err := s.Get(ctx, identityID)
	if err != nil {
		return nil, err
	}

	profile.Username = req.Username
	profile.FullName = req.FullName
	profile.Phone = model.StringPtr(req.Phone)
	if req.LocationID != "" {
		loc, _ := uuid.Parse(req.LocationID)
		profile.LocationID = &loc
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		if repository.IsConstraint(err, repository.ConstraintProfileUsername) {
			return nil, apperrors.Conflict("username already taken", err)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}
