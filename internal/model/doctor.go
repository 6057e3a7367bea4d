package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Doctor struct {
	Base
	HospitalID      uuid.UUID      `db:"hospital_id" json:"hospital_id"`
	Name            string         `db:"name" json:"name"`
	Specialization  string         `db:"specialization" json:"specialization"`
	Qualification   *string        `db:"qualification" json:"qualification,omitempty"`
	ExperienceYears *int           `db:"experience_years" json:"experience_years,omitempty"`
	AvailableDays   pq.StringArray `db:"available_days" json:"available_days,omitempty"`
	AvailableHours  *string        `db:"available_hours" json:"available_hours,omitempty"`
	ConsultationFee *float64       `db:"consultation_fee" json:"consultation_fee,omitempty"`
}

// DoctorListing is a doctor joined with the name of its hospital.
type DoctorListing struct {
	Doctor
	HospitalName string `db:"hospital_name" json:"hospital_name"`
}

type CreateDoctorRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=100"`
	Specialization  string   `json:"specialization" validate:"required,max=100"`
	Qualification   string   `json:"qualification" validate:"max=200"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,gte=0,lte=70"`
	AvailableDays   []string `json:"available_days" validate:"omitempty,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	AvailableHours  string   `json:"available_hours" validate:"max=100"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,gte=0"`
}

type DoctorFilter struct {
	Query          string
	Specialization string
	HospitalID     *uuid.UUID
}
