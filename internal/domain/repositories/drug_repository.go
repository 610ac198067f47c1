package repositories

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// DrugRepository defines read access to the local drug catalog. The catalog
// is owned by the medication CRUD collaborator; this engine never writes it.
type DrugRepository interface {
	// GetByID retrieves a drug by ID
	GetByID(ctx context.Context, id string) (*entities.Drug, error)

	// GetByIDs retrieves multiple drugs by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Drug, error)

	// ListActive retrieves all active drugs
	ListActive(ctx context.Context) ([]*entities.Drug, error)
}
