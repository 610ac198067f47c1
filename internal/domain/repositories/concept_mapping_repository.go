package repositories

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// ConceptMappingRepository defines data operations for drug-to-concept mappings
type ConceptMappingRepository interface {
	// Create creates a new concept mapping
	Create(ctx context.Context, mapping *entities.ConceptMapping) error

	// Update updates an existing concept mapping
	Update(ctx context.Context, mapping *entities.ConceptMapping) error

	// FindByDrugAndRxcui retrieves a mapping for a (drug, rxcui) pair, or a
	// not-found error when none exists
	FindByDrugAndRxcui(ctx context.Context, drugID, rxcui string) (*entities.ConceptMapping, error)

	// ListByDrug retrieves all mappings for a drug, verified first, then by
	// descending confidence
	ListByDrug(ctx context.Context, drugID string) ([]*entities.ConceptMapping, error)

	// ListVerified retrieves verified mappings with confidence at or above
	// the given threshold
	ListVerified(ctx context.Context, minConfidence float64) ([]*entities.ConceptMapping, error)

	// BestVerifiedByDrugs retrieves the highest-confidence verified mapping
	// per drug for the given drug IDs
	BestVerifiedByDrugs(ctx context.Context, drugIDs []string) (map[string]*entities.ConceptMapping, error)

	// CountVerified returns the number of verified mappings
	CountVerified(ctx context.Context) (int, error)
}
