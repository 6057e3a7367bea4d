package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment dates are YYYY-MM-DD and times HH:MM, as rendered by the
// repository.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	HospitalID      uuid.UUID         `db:"hospital_id" json:"hospital_id"`
	DoctorID        *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	AppointmentDate string            `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `db:"appointment_time" json:"appointment_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Reason          *string           `db:"reason" json:"reason,omitempty"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
}

// AppointmentDetails adds display names for lists and exports.
type AppointmentDetails struct {
	Appointment
	HospitalName string  `db:"hospital_name" json:"hospital_name"`
	DoctorName   *string `db:"doctor_name" json:"doctor_name,omitempty"`
	PatientName  *string `db:"patient_name" json:"patient_name,omitempty"`
}

type BookAppointmentRequest struct {
	HospitalID string `json:"hospital_id" validate:"required,uuid"`
	DoctorID   string `json:"doctor_id" validate:"omitempty,uuid"`
	Date       string `json:"date" validate:"required,isodate"`
	Time       string `json:"time" validate:"required,clocktime"`
	Reason     string `json:"reason" validate:"max=500"`
}

// AppointmentDay groups appointments sharing a date.
type AppointmentDay struct {
	Date         string               `json:"date"`
	Appointments []AppointmentDetails `json:"appointments"`
}

type AppointmentFilter struct {
	PatientID  *uuid.UUID
	HospitalID *uuid.UUID
}
