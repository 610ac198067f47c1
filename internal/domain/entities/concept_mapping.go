package entities

import "time"

// ConceptMapping links a local drug record to an external RxNorm concept.
// Multiple candidate mappings may coexist per drug; at most one verified
// mapping should be trusted at a time.
type ConceptMapping struct {
	ID              string    `json:"id" db:"id"`
	DrugID          string    `json:"drug_id" db:"drug_id"`
	Rxcui           string    `json:"rxcui" db:"rxcui"`
	ConceptName     string    `json:"concept_name" db:"concept_name"`
	TermType        string    `json:"term_type,omitempty" db:"term_type"`
	Source          string    `json:"source" db:"source"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	Verified        bool      `json:"verified" db:"verified"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
