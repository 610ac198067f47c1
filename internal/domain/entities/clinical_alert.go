package entities

import "time"

// ClinicalAlert is a standing safety notice affecting one or more drugs,
// independent of pairwise interactions. Its lifecycle is owned by an
// external alert-ingestion collaborator; this engine only serves it.
type ClinicalAlert struct {
	ID             string    `json:"id" db:"id"`
	AlertType      string    `json:"alert_type" db:"alert_type"`
	Severity       Severity  `json:"severity" db:"severity"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description,omitempty" db:"description"`
	Recommendation string    `json:"recommendation,omitempty" db:"recommendation"`
	AffectedDrugs  []string  `json:"affected_drugs" db:"-"`
	Priority       int       `json:"priority" db:"priority"`
	SourceID       string    `json:"source_id,omitempty" db:"source_id"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	EffectiveDate  time.Time `json:"effective_date" db:"effective_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Affects reports whether the alert's affected-drug set contains any of the
// given drug names (exact, case-sensitive match as stored).
func (a *ClinicalAlert) Affects(drugNames []string) bool {
	for _, affected := range a.AffectedDrugs {
		for _, name := range drugNames {
			if affected == name {
				return true
			}
		}
	}
	return false
}
