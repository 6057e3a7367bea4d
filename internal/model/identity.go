package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// IdentityMetadata is the sign-up metadata stored alongside an identity.
// Every field is optional; the profile resolver fills the gaps.
type IdentityMetadata struct {
	Username   string `json:"username,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	UserType   string `json:"user_type,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

func (m IdentityMetadata) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *IdentityMetadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = IdentityMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for IdentityMetadata")
	}
}

// Identity is the authenticated principal owned by the auth service.
type Identity struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	Email            string           `json:"email" db:"email"`
	PasswordHash     string           `json:"-" db:"password_hash"`
	Metadata         IdentityMetadata `json:"metadata" db:"raw_metadata"`
	EmailConfirmedAt *time.Time       `json:"email_confirmed_at,omitempty" db:"email_confirmed_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

func (i *Identity) Confirmed() bool {
	return i.EmailConfirmedAt != nil
}

type SignUpRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Username   string `json:"username" validate:"required,min=3,max=50"`
	FullName   string `json:"full_name" validate:"required,min=2,max=100"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	UserType   string `json:"user_type" validate:"required,oneof=patient hospital"`
	LocationID string `json:"location_id" validate:"required,uuid"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by sign-in and refresh.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Identity    *Identity `json:"identity"`
}
