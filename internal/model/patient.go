package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Patient struct {
	Base
	ProfileID             uuid.UUID      `db:"profile_id" json:"profile_id"`
	DateOfBirth           *string        `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                *string        `db:"gender" json:"gender,omitempty"`
	BloodGroup            *string        `db:"blood_group" json:"blood_group,omitempty"`
	Allergies             pq.StringArray `db:"allergies" json:"allergies,omitempty"`
	MedicalConditions     pq.StringArray `db:"medical_conditions" json:"medical_conditions,omitempty"`
	EmergencyContactName  *string        `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string        `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
}

// PatientDetails is a patient row joined with its profile, as listed to hospitals.
type PatientDetails struct {
	Patient
	Username string  `db:"username" json:"username"`
	FullName string  `db:"full_name" json:"full_name"`
	Phone    *string `db:"phone" json:"phone,omitempty"`
}

// AddPatientRequest links an existing profile as a patient. The profile is
// looked up by phone first and then by username.
type AddPatientRequest struct {
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Username string `json:"username" validate:"required_without=Phone"`
}

// AddPatientResult reports whether a new patient row was written.
type AddPatientResult struct {
	Patient *Patient `json:"patient"`
	Created bool     `json:"created"`
}
