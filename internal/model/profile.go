package model

import (
	"github.com/google/uuid"
)

// Profile binds an identity to a role and display attributes.
type Profile struct {
	Base
	IdentityID uuid.UUID  `json:"identity_id" db:"identity_id"`
	Username   string     `json:"username" db:"username"`
	FullName   string     `json:"full_name" db:"full_name"`
	Phone      *string    `json:"phone,omitempty" db:"phone"`
	Role       Role       `json:"user_type" db:"user_type"`
	LocationID *uuid.UUID `json:"location_id,omitempty" db:"location_id"`
}

type UpdateProfileRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	FullName   string `json:"full_name" validate:"required,min=2,max=100"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	LocationID string `json:"location_id" validate:"omitempty,uuid"`
}
