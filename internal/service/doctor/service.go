package doctor

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

// HospitalLookup resolves the caller's own hospital.
type HospitalLookup interface {
	ForProfile(ctx context.Context, profile *model.Profile) (*model.Hospital, error)
}

type Service struct {
	doctors   repository.DoctorRepository
	hospitals HospitalLookup
	validator validator.Validator
}

func NewService(doctors repository.DoctorRepository, hospitals HospitalLookup, v validator.Validator) *Service {
	return &Service{doctors: doctors, hospitals: hospitals, validator: v}
}

// Create adds a doctor to the caller's hospital. The hospital is never taken
// from the request.
func (s *Service) Create(ctx context.Context, profile *model.Profile, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if profile.Role != model.RoleHospital {
		return nil, apperrors.Forbidden("only hospitals can add doctors")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Specialization = strings.TrimSpace(req.Specialization)
	req.Qualification = strings.TrimSpace(req.Qualification)
	req.AvailableHours = strings.TrimSpace(req.AvailableHours)
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	hospital, err := s.hospitals.ForProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	doc := &model.Doctor{
		HospitalID:      hospital.ID,
		Name:            req.Name,
		Specialization:  req.Specialization,
		Qualification:   model.StringPtr(req.Qualification),
		ExperienceYears: req.ExperienceYears,
		AvailableDays:   req.AvailableDays,
		AvailableHours:  model.StringPtr(req.AvailableHours),
		ConsultationFee: req.ConsultationFee,
	}
	if err := s.doctors.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	log.Info().Str("doctor_id", doc.ID.String()).Str("hospital_id", hospital.ID.String()).Msg("doctor added")
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Doctor, error) {
	doctorID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.doctors.GetByID(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doc, nil
}

// List searches name and specialization by substring and filters on exact
// specialization and hospital. Results are ordered by name.
func (s *Service) List(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorListing, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	list, err := s.doctors.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return list, nil
}

func (s *Service) Specializations(ctx context.Context) ([]string, error) {
	list, err := s.doctors.ListSpecializations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	return list, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("invalid doctor id", err)
	}
	return id, nil
}
