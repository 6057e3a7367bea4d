package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Hospital struct {
	Base
	ProfileID        uuid.UUID      `db:"profile_id" json:"profile_id"`
	HospitalName     string         `db:"hospital_name" json:"hospital_name"`
	Address          string         `db:"address" json:"address"`
	Phone            string         `db:"phone" json:"phone"`
	Email            *string        `db:"email" json:"email,omitempty"`
	EmergencyContact *string        `db:"emergency_contact" json:"emergency_contact,omitempty"`
	LocationID       uuid.UUID      `db:"location_id" json:"location_id"`
	Specializations  pq.StringArray `db:"specializations" json:"specializations,omitempty"`
	IsVerified       bool           `db:"is_verified" json:"is_verified"`
}

type RegisterHospitalRequest struct {
	HospitalName     string   `json:"hospital_name" validate:"required,min=2,max=200"`
	Address          string   `json:"address" validate:"required,max=500"`
	Phone            string   `json:"phone" validate:"required,phone"`
	Email            string   `json:"email" validate:"omitempty,email"`
	EmergencyContact string   `json:"emergency_contact" validate:"omitempty,phone"`
	LocationID       string   `json:"location_id" validate:"required,uuid"`
	Specializations  []string `json:"specializations" validate:"omitempty,dive,required,max=100"`
}
