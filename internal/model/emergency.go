package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertTypeAmbulance AlertType = "ambulance"
	AlertTypeEmergency AlertType = "emergency"
	AlertTypeCritical  AlertType = "critical"
)

type EmergencyStatus string

const (
	EmergencyStatusActive    EmergencyStatus = "active"
	EmergencyStatusResponded EmergencyStatus = "responded"
	EmergencyStatusResolved  EmergencyStatus = "resolved"
	EmergencyStatusCancelled EmergencyStatus = "cancelled"
)

type EmergencyAlert struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	LocationID      uuid.UUID       `db:"location_id" json:"location_id"`
	AlertType       AlertType       `db:"alert_type" json:"alert_type"`
	Status          EmergencyStatus `db:"status" json:"status"`
	PatientLocation *string         `db:"patient_location" json:"patient_location,omitempty"`
	ContactNumber   *string         `db:"contact_number" json:"contact_number,omitempty"`
	Description     *string         `db:"description" json:"description,omitempty"`
	RespondedBy     *uuid.UUID      `db:"responded_by" json:"responded_by,omitempty"`
	ResponseTime    *time.Time      `db:"response_time" json:"response_time,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// EmergencyAlertDetails carries the patient and location names shown to hospitals.
type EmergencyAlertDetails struct {
	EmergencyAlert
	PatientName  string `db:"patient_name" json:"patient_name"`
	LocationName string `db:"location_name" json:"location_name"`
}

type RaiseEmergencyRequest struct {
	AlertType       string `json:"alert_type" validate:"required,oneof=ambulance emergency critical"`
	LocationID      string `json:"location_id" validate:"omitempty,uuid"`
	PatientLocation string `json:"patient_location" validate:"max=255"`
	ContactNumber   string `json:"contact_number" validate:"omitempty,phone"`
	Description     string `json:"description" validate:"max=1000"`
}
