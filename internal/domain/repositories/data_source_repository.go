package repositories

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// DataSourceRepository defines read access to the knowledge-source registry
type DataSourceRepository interface {
	// GetByID retrieves a data source by ID
	GetByID(ctx context.Context, id string) (*entities.DataSource, error)

	// FindByName retrieves a data source by its unique name
	FindByName(ctx context.Context, name string) (*entities.DataSource, error)

	// ListActive retrieves all active data sources
	ListActive(ctx context.Context) ([]*entities.DataSource, error)
}
