package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

var drugColumns = []interface{}{
	"id", "name", "category", "strength", "manufacturer",
	"is_active", "created_at", "updated_at",
}

// DrugAdapter implements DrugRepository on top of the drugs table. The table
// is owned by the medication CRUD service, so this adapter is read-only.
type DrugAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDrugAdapter creates a new drug adapter
func NewDrugAdapter(client *postgres.Client) repositories.DrugRepository {
	return &DrugAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a drug by ID
func (a *DrugAdapter) GetByID(ctx context.Context, id string) (*entities.Drug, error) {
	query, args, err := a.db.Select(drugColumns...).
		From("drugs").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	drug, err := a.scanDrug(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("drug with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get drug", err)
	}

	return drug, nil
}

// GetByIDs retrieves multiple drugs by their IDs
func (a *DrugAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Drug, error) {
	if len(ids) == 0 {
		return []*entities.Drug{}, nil
	}

	query, args, err := a.db.Select(drugColumns...).
		From("drugs").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryDrugs(ctx, query, args...)
}

// ListActive retrieves all active drugs ordered by name
func (a *DrugAdapter) ListActive(ctx context.Context) ([]*entities.Drug, error) {
	query, args, err := a.db.Select(drugColumns...).
		From("drugs").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryDrugs(ctx, query, args...)
}

func (a *DrugAdapter) queryDrugs(ctx context.Context, query string, args ...interface{}) ([]*entities.Drug, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query drugs", err)
	}
	defer rows.Close()

	var drugs []*entities.Drug
	for rows.Next() {
		drug, err := a.scanDrug(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan drug", err)
		}
		drugs = append(drugs, drug)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating drugs", err)
	}

	return drugs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *DrugAdapter) scanDrug(row rowScanner) (*entities.Drug, error) {
	drug := &entities.Drug{}
	var category, strength, manufacturer sql.NullString

	err := row.Scan(
		&drug.ID,
		&drug.Name,
		&category,
		&strength,
		&manufacturer,
		&drug.IsActive,
		&drug.CreatedAt,
		&drug.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	drug.Category = category.String
	drug.Strength = strength.String
	drug.Manufacturer = manufacturer.String

	return drug, nil
}
