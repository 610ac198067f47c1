package entities

import "time"

// Drug represents a local drug catalog entry. The catalog itself is owned by
// the medication CRUD service; this engine only reads it.
type Drug struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category,omitempty" db:"category"`
	Strength     string    `json:"strength,omitempty" db:"strength"`
	Manufacturer string    `json:"manufacturer,omitempty" db:"manufacturer"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
