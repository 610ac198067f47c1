package entities

import "time"

// DataSource is a registry entry for an external or internal knowledge
// source. Managed by an admin collaborator; read-only to this engine.
type DataSource struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	SourceType       string    `json:"source_type,omitempty" db:"source_type"`
	BaseURL          string    `json:"base_url,omitempty" db:"base_url"`
	CredibilityScore float64   `json:"credibility_score" db:"credibility_score"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
