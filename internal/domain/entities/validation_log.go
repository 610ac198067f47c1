package entities

import "time"

// Validation outcomes.
const (
	ValidationPassed = "passed"
	ValidationFailed = "failed"
)

// ValidationLog is one consensus-validation result for one interaction.
// Rows are append-only and never mutated after creation.
type ValidationLog struct {
	ID               string    `json:"id" db:"id"`
	InteractionID    string    `json:"interaction_id" db:"interaction_id"`
	ValidationSource string    `json:"validation_source" db:"validation_source"`
	ValidationStatus string    `json:"validation_status" db:"validation_status"`
	ValidationScore  float64   `json:"validation_score" db:"validation_score"`
	ValidationNotes  string    `json:"validation_notes,omitempty" db:"validation_notes"`
	ValidatedBy      string    `json:"validated_by" db:"validated_by"`
	ValidatedAt      time.Time `json:"validated_at" db:"validated_at"`
}
