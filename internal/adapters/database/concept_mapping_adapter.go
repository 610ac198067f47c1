package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

var conceptMappingColumns = []interface{}{
	"id", "drug_id", "rxcui", "concept_name", "term_type", "source",
	"confidence_score", "verified", "created_at", "updated_at",
}

// ConceptMappingAdapter implements ConceptMappingRepository
type ConceptMappingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConceptMappingAdapter creates a new concept mapping adapter
func NewConceptMappingAdapter(client *postgres.Client) repositories.ConceptMappingRepository {
	return &ConceptMappingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new concept mapping
func (a *ConceptMappingAdapter) Create(ctx context.Context, mapping *entities.ConceptMapping) error {
	record := goqu.Record{
		"id":               mapping.ID,
		"drug_id":          mapping.DrugID,
		"rxcui":            mapping.Rxcui,
		"concept_name":     mapping.ConceptName,
		"term_type":        sql.NullString{String: mapping.TermType, Valid: mapping.TermType != ""},
		"source":           mapping.Source,
		"confidence_score": mapping.ConfidenceScore,
		"verified":         mapping.Verified,
		"created_at":       mapping.CreatedAt,
		"updated_at":       mapping.UpdatedAt,
	}

	query, args, err := a.db.Insert("concept_mappings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create concept mapping", err)
	}

	return nil
}

// Update updates an existing concept mapping
func (a *ConceptMappingAdapter) Update(ctx context.Context, mapping *entities.ConceptMapping) error {
	mapping.UpdatedAt = time.Now()

	record := goqu.Record{
		"concept_name":     mapping.ConceptName,
		"term_type":        sql.NullString{String: mapping.TermType, Valid: mapping.TermType != ""},
		"source":           mapping.Source,
		"confidence_score": mapping.ConfidenceScore,
		"verified":         mapping.Verified,
		"updated_at":       mapping.UpdatedAt,
	}

	query, args, err := a.db.Update("concept_mappings").
		Set(record).
		Where(goqu.Ex{"id": mapping.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update concept mapping", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("concept mapping with id %s not found", mapping.ID))
	}

	return nil
}

// FindByDrugAndRxcui retrieves a mapping for a (drug, rxcui) pair
func (a *ConceptMappingAdapter) FindByDrugAndRxcui(ctx context.Context, drugID, rxcui string) (*entities.ConceptMapping, error) {
	query, args, err := a.db.Select(conceptMappingColumns...).
		From("concept_mappings").
		Where(goqu.Ex{"drug_id": drugID, "rxcui": rxcui}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	mapping, err := a.scanMapping(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("concept mapping for drug %s and rxcui %s not found", drugID, rxcui))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get concept mapping", err)
	}

	return mapping, nil
}

// ListByDrug retrieves all mappings for a drug, verified first, then by
// descending confidence
func (a *ConceptMappingAdapter) ListByDrug(ctx context.Context, drugID string) ([]*entities.ConceptMapping, error) {
	query, args, err := a.db.Select(conceptMappingColumns...).
		From("concept_mappings").
		Where(goqu.Ex{"drug_id": drugID}).
		Order(goqu.I("verified").Desc(), goqu.I("confidence_score").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryMappings(ctx, query, args...)
}

// ListVerified retrieves verified mappings with confidence at or above the
// given threshold
func (a *ConceptMappingAdapter) ListVerified(ctx context.Context, minConfidence float64) ([]*entities.ConceptMapping, error) {
	query, args, err := a.db.Select(conceptMappingColumns...).
		From("concept_mappings").
		Where(goqu.Ex{"verified": true}).
		Where(goqu.I("confidence_score").Gte(minConfidence)).
		Order(goqu.I("confidence_score").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryMappings(ctx, query, args...)
}

// BestVerifiedByDrugs retrieves the highest-confidence verified mapping per
// drug for the given drug IDs
func (a *ConceptMappingAdapter) BestVerifiedByDrugs(ctx context.Context, drugIDs []string) (map[string]*entities.ConceptMapping, error) {
	if len(drugIDs) == 0 {
		return map[string]*entities.ConceptMapping{}, nil
	}

	query, args, err := a.db.Select(conceptMappingColumns...).
		From("concept_mappings").
		Where(goqu.Ex{"drug_id": drugIDs, "verified": true}).
		Order(goqu.I("drug_id").Asc(), goqu.I("confidence_score").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	mappings, err := a.queryMappings(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	best := make(map[string]*entities.ConceptMapping, len(drugIDs))
	for _, mapping := range mappings {
		if _, ok := best[mapping.DrugID]; !ok {
			best[mapping.DrugID] = mapping
		}
	}

	return best, nil
}

// CountVerified returns the number of verified mappings
func (a *ConceptMappingAdapter) CountVerified(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("concept_mappings").
		Where(goqu.Ex{"verified": true}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count verified mappings", err)
	}

	return count, nil
}

func (a *ConceptMappingAdapter) queryMappings(ctx context.Context, query string, args ...interface{}) ([]*entities.ConceptMapping, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query concept mappings", err)
	}
	defer rows.Close()

	var mappings []*entities.ConceptMapping
	for rows.Next() {
		mapping, err := a.scanMapping(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan concept mapping", err)
		}
		mappings = append(mappings, mapping)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating concept mappings", err)
	}

	return mappings, nil
}

func (a *ConceptMappingAdapter) scanMapping(row rowScanner) (*entities.ConceptMapping, error) {
	mapping := &entities.ConceptMapping{}
	var termType sql.NullString

	err := row.Scan(
		&mapping.ID,
		&mapping.DrugID,
		&mapping.Rxcui,
		&mapping.ConceptName,
		&termType,
		&mapping.Source,
		&mapping.ConfidenceScore,
		&mapping.Verified,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	mapping.TermType = termType.String

	return mapping, nil
}
