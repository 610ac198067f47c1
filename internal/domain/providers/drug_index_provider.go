package providers

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// DrugIndexProvider defines the search-index surface used for drug name
// suggestions (e.g. Typesense).
type DrugIndexProvider interface {
	// Index upserts a drug document into the index
	Index(ctx context.Context, drug *entities.Drug) error

	// IndexBatch upserts multiple drug documents
	IndexBatch(ctx context.Context, drugs []*entities.Drug) error

	// Suggest returns active drugs matching the given name prefix
	Suggest(ctx context.Context, query string, limit int) ([]*entities.Drug, error)
}
