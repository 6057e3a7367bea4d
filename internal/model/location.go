package model

import (
	"time"

	"github.com/google/uuid"
)

// Location is static reference data seeded by migration.
type Location struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	State     string    `db:"state" json:"state"`
	District  *string   `db:"district" json:"district,omitempty"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
