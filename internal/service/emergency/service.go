package emergency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

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
	emergencies repository.EmergencyRepository
	locations   repository.LocationRepository
	patients    repository.PatientRepository
	ensurer     PatientEnsurer
	broker      messaging.Broker
	validator   validator.Validator
	metrics     *metrics.Metrics
}

// NewService wires the emergency service. broker may be nil, in which case
// Stream is unavailable.
func NewService(emergencies repository.EmergencyRepository, locations repository.LocationRepository,
	patients repository.PatientRepository, ensurer PatientEnsurer, broker messaging.Broker,
	v validator.Validator, m *metrics.Metrics) *Service {
	return &Service{
		emergencies: emergencies,
		locations:   locations,
		patients:    patients,
		ensurer:     ensurer,
		broker:      broker,
		validator:   v,
		metrics:     m,
	}
}

// Raise records an active alert for the calling patient. The location falls
// back to the profile's location and the contact number to the profile's phone.
func (s *Service) Raise(ctx context.Context, profile *model.Profile, req *model.RaiseEmergencyRequest) (*model.EmergencyAlertDetails, error) {
	if profile.Role != model.RolePatient {
		return nil, apperrors.Forbidden("only patients can raise emergency alerts")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.AsAppError(err)
	}

	var locationID uuid.UUID
	switch {
	case req.LocationID != "":
		locationID = uuid.MustParse(req.LocationID)
	case profile.LocationID != nil:
		locationID = *profile.LocationID
	default:
		return nil, apperrors.Validation(map[string]string{"location_id": "is required"})
	}
	location, err := s.locations.GetByID(ctx, locationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Validation(map[string]string{"location_id": "unknown location"})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	patient, _, err := s.ensurer.EnsurePatient(ctx, profile)
	if err != nil {
		return nil, err
	}

	contact := strings.TrimSpace(req.ContactNumber)
	if contact == "" {
		contact = model.Deref(profile.Phone)
	}
	alert := model.EmergencyAlert{
		ID:              uuid.New(),
		PatientID:       patient.ID,
		LocationID:      location.ID,
		AlertType:       model.AlertType(req.AlertType),
		Status:          model.EmergencyStatusActive,
		PatientLocation: model.StringPtr(strings.TrimSpace(req.PatientLocation)),
		ContactNumber:   model.StringPtr(contact),
		Description:     model.StringPtr(strings.TrimSpace(req.Description)),
		CreatedAt:       time.Now().UTC(),
	}
	details := &model.EmergencyAlertDetails{
		EmergencyAlert: alert,
		PatientName:    profile.FullName,
		LocationName:   location.Name,
	}

	event, err := model.NewOutboxEvent(messaging.ChannelEmergencyRaised, details)
	if err != nil {
		return nil, fmt.Errorf("failed to build event: %w", err)
	}
	if err := s.emergencies.Create(ctx, &details.EmergencyAlert, event); err != nil {
		return nil, fmt.Errorf("failed to create emergency alert: %w", err)
	}

	if s.metrics != nil {
		s.metrics.EmergenciesRaised.Inc()
	}
	log.Warn().
		Str("alert_id", alert.ID.String()).
		Str("alert_type", req.AlertType).
		Str("location", location.Name).
		Msg("emergency alert raised")
	return details, nil
}

// List returns every alert to hospitals and the caller's own alerts to
// patients, newest first.
func (s *Service) List(ctx context.Context, profile *model.Profile) ([]*model.EmergencyAlertDetails, error) {
	var patientID *uuid.UUID
	switch profile.Role {
	case model.RoleHospital:
	case model.RolePatient:
		p, err := s.patients.GetByProfileID(ctx, profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return []*model.EmergencyAlertDetails{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get patient: %w", err)
		}
		patientID = &p.ID
	default:
		return nil, apperrors.Forbidden("emergency alerts are not available for this role")
	}

	list, err := s.emergencies.List(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency alerts: %w", err)
	}
	return list, nil
}

type envelope struct {
	Type    string                      `json:"type"`
	Payload model.EmergencyAlertDetails `json:"payload"`
}

// Stream delivers newly raised alerts to hospitals until ctx ends.
// Undecodable messages are skipped.
func (s *Service) Stream(ctx context.Context, profile *model.Profile) (<-chan *model.EmergencyAlertDetails, error) {
	if profile.Role != model.RoleHospital {
		return nil, apperrors.Forbidden("only hospitals can follow emergency alerts")
	}
	if s.broker == nil {
		return nil, apperrors.Unavailable("live alerts are not available", nil)
	}

	msgs, err := s.broker.Subscribe(ctx, messaging.ChannelEmergencyRaised)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to emergency alerts: %w", err)
	}

	out := make(chan *model.EmergencyAlertDetails)
	go func() {
		defer close(out)
		for payload := range msgs {
			var msg envelope
			if err := json.Unmarshal(payload, &msg); err != nil {
				log.Error().Err(err).Msg("failed to decode emergency alert")
				continue
			}
			select {
			case out <- &msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
