package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe delivers raw payloads until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channel names shared by the API and the worker.
const (
	ChannelAppointmentBooked = "appointment.booked"
	ChannelEmergencyRaised   = "emergency.raised"
	ChannelPatientLinked     = "patient.linked"
	sessionChannelPrefix     = "session.events."
)

// SessionChannel is the channel carrying session transitions for one identity.
func SessionChannel(identityID string) string {
	return sessionChannelPrefix + identityID
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
