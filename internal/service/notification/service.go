// Package notification emails hospitals about new bookings. It runs in the
// worker and consumes the events the outbox processor publishes.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-navigator/internal/email"
	"github.com/jwalitptl/health-navigator/internal/repository"
	"github.com/jwalitptl/health-navigator/internal/service/appointment"
	"github.com/jwalitptl/health-navigator/pkg/messaging"
)

type Service struct {
	broker    messaging.Broker
	hospitals repository.HospitalRepository
	mailer    email.Service
}

func NewService(broker messaging.Broker, hospitals repository.HospitalRepository, mailer email.Service) *Service {
	return &Service{broker: broker, hospitals: hospitals, mailer: mailer}
}

type bookedEnvelope struct {
	Type    string                  `json:"type"`
	Payload appointment.BookedEvent `json:"payload"`
}

// Run handles booking events until ctx ends or the subscription closes.
// A failed notification is logged and skipped.
func (s *Service) Run(ctx context.Context) error {
	msgs, err := s.broker.Subscribe(ctx, messaging.ChannelAppointmentBooked)
	if err != nil {
		return fmt.Errorf("failed to subscribe to bookings: %w", err)
	}

	for payload := range msgs {
		if err := s.HandleBooked(ctx, payload); err != nil {
			log.Warn().Err(err).Msg("booking notification failed")
		}
	}
	return nil
}

// HandleBooked emails the booked hospital. Hospitals without an email
// address are skipped.
func (s *Service) HandleBooked(ctx context.Context, payload []byte) error {
	var msg bookedEnvelope
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to decode booking: %w", err)
	}

	hospital, err := s.hospitals.GetByID(ctx, msg.Payload.HospitalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get hospital: %w", err)
	}
	if hospital.Email == nil || *hospital.Email == "" {
		return nil
	}

	body := fmt.Sprintf(
		"<p>A new appointment was booked at %s.</p><p>Date: %s<br>Time: %s</p><p>Reference: %s</p>",
		html.EscapeString(hospital.HospitalName),
		html.EscapeString(msg.Payload.Date),
		html.EscapeString(msg.Payload.Time),
		msg.Payload.AppointmentID,
	)
	if err := s.mailer.SendCustom(ctx, *hospital.Email, "New appointment booked", body); err != nil {
		return fmt.Errorf("failed to email hospital: %w", err)
	}

	log.Info().
		Str("hospital_id", hospital.ID.String()).
		Str("appointment_id", msg.Payload.AppointmentID.String()).
		Msg("hospital notified of booking")
	return nil
}
