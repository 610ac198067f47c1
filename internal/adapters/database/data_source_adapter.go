package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

var dataSourceColumns = []interface{}{
	"id", "name", "source_type", "base_url", "credibility_score",
	"is_active", "created_at", "updated_at",
}

// DataSourceAdapter implements DataSourceRepository. The registry is
// maintained by admins; this adapter only reads it.
type DataSourceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDataSourceAdapter creates a new data source adapter
func NewDataSourceAdapter(client *postgres.Client) repositories.DataSourceRepository {
	return &DataSourceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a data source by ID
func (a *DataSourceAdapter) GetByID(ctx context.Context, id string) (*entities.DataSource, error) {
	return a.getByField(ctx, "id", id)
}

// FindByName retrieves a data source by its unique name
func (a *DataSourceAdapter) FindByName(ctx context.Context, name string) (*entities.DataSource, error) {
	return a.getByField(ctx, "name", name)
}

// ListActive retrieves all active data sources ordered by credibility
func (a *DataSourceAdapter) ListActive(ctx context.Context) ([]*entities.DataSource, error) {
	query, args, err := a.db.Select(dataSourceColumns...).
		From("data_sources").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("credibility_score").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list data sources", err)
	}
	defer rows.Close()

	var sources []*entities.DataSource
	for rows.Next() {
		source, err := a.scanSource(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan data source", err)
		}
		sources = append(sources, source)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating data sources", err)
	}

	return sources, nil
}

func (a *DataSourceAdapter) getByField(ctx context.Context, field, value string) (*entities.DataSource, error) {
	query, args, err := a.db.Select(dataSourceColumns...).
		From("data_sources").
		Where(goqu.Ex{field: value}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	source, err := a.scanSource(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("data source with %s %s not found", field, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get data source", err)
	}

	return source, nil
}

func (a *DataSourceAdapter) scanSource(row rowScanner) (*entities.DataSource, error) {
	source := &entities.DataSource{}
	var sourceType, baseURL sql.NullString

	err := row.Scan(
		&source.ID,
		&source.Name,
		&sourceType,
		&baseURL,
		&source.CredibilityScore,
		&source.IsActive,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	source.SourceType = sourceType.String
	source.BaseURL = baseURL.String

	return source, nil
}
