package entities

import "time"

// Interaction represents a potential interaction between exactly two drugs.
// The pair is unordered clinically but stored with Drug1ID < Drug2ID so the
// (pair, source) uniqueness invariant holds regardless of lookup order.
// Interactions are never deleted, only refreshed and revalidated.
type Interaction struct {
	ID                       string    `json:"id" db:"id"`
	Drug1ID                  string    `json:"drug1_id" db:"drug1_id"`
	Drug2ID                  string    `json:"drug2_id" db:"drug2_id"`
	Drug1Rxcui               string    `json:"drug1_rxcui,omitempty" db:"drug1_rxcui"`
	Drug2Rxcui               string    `json:"drug2_rxcui,omitempty" db:"drug2_rxcui"`
	Severity                 Severity  `json:"severity" db:"severity"`
	Mechanism                string    `json:"mechanism,omitempty" db:"mechanism"`
	ClinicalSignificance     string    `json:"clinical_significance,omitempty" db:"clinical_significance"`
	ManagementRecommendation string    `json:"management_recommendation,omitempty" db:"management_recommendation"`
	EvidenceLevel            string    `json:"evidence_level,omitempty" db:"evidence_level"`
	SourceID                 string    `json:"source_id" db:"source_id"`
	ConfidenceScore          float64   `json:"confidence_score" db:"confidence_score"`
	InteractionType          string    `json:"interaction_type" db:"interaction_type"`
	LastVerified             time.Time `json:"last_verified" db:"last_verified"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// OrderedPair returns the two drug IDs in stable storage order.
func OrderedPair(drug1ID, drug2ID string) (string, string) {
	if drug2ID < drug1ID {
		return drug2ID, drug1ID
	}
	return drug1ID, drug2ID
}
