package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

var interactionColumns = []interface{}{
	"id", "drug1_id", "drug2_id", "drug1_rxcui", "drug2_rxcui", "severity",
	"mechanism", "clinical_significance", "management_recommendation",
	"evidence_level", "source_id", "confidence_score", "interaction_type",
	"last_verified", "created_at", "updated_at",
}

// InteractionAdapter implements InteractionRepository. Pairs are stored
// with drug1_id < drug2_id so lookups normalize order before querying.
type InteractionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInteractionAdapter creates a new interaction adapter
func NewInteractionAdapter(client *postgres.Client) repositories.InteractionRepository {
	return &InteractionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new interaction record
func (a *InteractionAdapter) Create(ctx context.Context, interaction *entities.Interaction) error {
	record := goqu.Record{
		"id":                        interaction.ID,
		"drug1_id":                  interaction.Drug1ID,
		"drug2_id":                  interaction.Drug2ID,
		"drug1_rxcui":               sql.NullString{String: interaction.Drug1Rxcui, Valid: interaction.Drug1Rxcui != ""},
		"drug2_rxcui":               sql.NullString{String: interaction.Drug2Rxcui, Valid: interaction.Drug2Rxcui != ""},
		"severity":                  string(interaction.Severity),
		"mechanism":                 sql.NullString{String: interaction.Mechanism, Valid: interaction.Mechanism != ""},
		"clinical_significance":     sql.NullString{String: interaction.ClinicalSignificance, Valid: interaction.ClinicalSignificance != ""},
		"management_recommendation": sql.NullString{String: interaction.ManagementRecommendation, Valid: interaction.ManagementRecommendation != ""},
		"evidence_level":            sql.NullString{String: interaction.EvidenceLevel, Valid: interaction.EvidenceLevel != ""},
		"source_id":                 interaction.SourceID,
		"confidence_score":          interaction.ConfidenceScore,
		"interaction_type":          interaction.InteractionType,
		"last_verified":             interaction.LastVerified,
		"created_at":                interaction.CreatedAt,
		"updated_at":                interaction.UpdatedAt,
	}

	query, args, err := a.db.Insert("drug_interactions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create interaction", err)
	}

	return nil
}

// Update refreshes an existing interaction record
func (a *InteractionAdapter) Update(ctx context.Context, interaction *entities.Interaction) error {
	interaction.UpdatedAt = time.Now()

	record := goqu.Record{
		"drug1_rxcui":               sql.NullString{String: interaction.Drug1Rxcui, Valid: interaction.Drug1Rxcui != ""},
		"drug2_rxcui":               sql.NullString{String: interaction.Drug2Rxcui, Valid: interaction.Drug2Rxcui != ""},
		"severity":                  string(interaction.Severity),
		"mechanism":                 sql.NullString{String: interaction.Mechanism, Valid: interaction.Mechanism != ""},
		"clinical_significance":     sql.NullString{String: interaction.ClinicalSignificance, Valid: interaction.ClinicalSignificance != ""},
		"management_recommendation": sql.NullString{String: interaction.ManagementRecommendation, Valid: interaction.ManagementRecommendation != ""},
		"evidence_level":            sql.NullString{String: interaction.EvidenceLevel, Valid: interaction.EvidenceLevel != ""},
		"confidence_score":          interaction.ConfidenceScore,
		"interaction_type":          interaction.InteractionType,
		"last_verified":             interaction.LastVerified,
		"updated_at":                interaction.UpdatedAt,
	}

	query, args, err := a.db.Update("drug_interactions").
		Set(record).
		Where(goqu.Ex{"id": interaction.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update interaction", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("interaction with id %s not found", interaction.ID))
	}

	return nil
}

// FindByPairAndSource retrieves the interaction for an unordered drug pair
// and source
func (a *InteractionAdapter) FindByPairAndSource(ctx context.Context, drug1ID, drug2ID, sourceID string) (*entities.Interaction, error) {
	d1, d2 := entities.OrderedPair(drug1ID, drug2ID)

	query, args, err := a.db.Select(interactionColumns...).
		From("drug_interactions").
		Where(goqu.Ex{"drug1_id": d1, "drug2_id": d2, "source_id": sourceID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	interaction, err := a.scanInteraction(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("interaction not found for pair and source")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get interaction", err)
	}

	return interaction, nil
}

// FindByPair retrieves the first interaction for an unordered drug pair
// regardless of source, highest confidence first
func (a *InteractionAdapter) FindByPair(ctx context.Context, drug1ID, drug2ID string) (*entities.Interaction, error) {
	d1, d2 := entities.OrderedPair(drug1ID, drug2ID)

	query, args, err := a.db.Select(interactionColumns...).
		From("drug_interactions").
		Where(goqu.Ex{"drug1_id": d1, "drug2_id": d2}).
		Order(goqu.I("confidence_score").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	interaction, err := a.scanInteraction(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("interaction not found for pair")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get interaction", err)
	}

	return interaction, nil
}

// ListByDrugSet retrieves interactions where both drugs are in the set
func (a *InteractionAdapter) ListByDrugSet(ctx context.Context, drugIDs []string) ([]*entities.Interaction, error) {
	if len(drugIDs) < 2 {
		return []*entities.Interaction{}, nil
	}

	query, args, err := a.db.Select(interactionColumns...).
		From("drug_interactions").
		Where(goqu.Ex{"drug1_id": drugIDs, "drug2_id": drugIDs}).
		Order(goqu.I("confidence_score").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryInteractions(ctx, query, args...)
}

// ListVerifiedSince retrieves interactions last verified at or after the
// given time
func (a *InteractionAdapter) ListVerifiedSince(ctx context.Context, since time.Time) ([]*entities.Interaction, error) {
	query, args, err := a.db.Select(interactionColumns...).
		From("drug_interactions").
		Where(goqu.I("last_verified").Gte(since)).
		Order(goqu.I("last_verified").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryInteractions(ctx, query, args...)
}

// TouchVerifiedSince bumps updated_at on recently verified interactions
func (a *InteractionAdapter) TouchVerifiedSince(ctx context.Context, since time.Time) (int, error) {
	query, args, err := a.db.Update("drug_interactions").
		Set(goqu.Record{"updated_at": time.Now()}).
		Where(goqu.I("last_verified").Gte(since)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to touch interactions", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}

	return int(rowsAffected), nil
}

// Count returns the total number of interaction records
func (a *InteractionAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("drug_interactions").
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count interactions", err)
	}

	return count, nil
}

// CountCreatedSince returns the number of interactions created at or after
// the given time
func (a *InteractionAdapter) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("drug_interactions").
		Where(goqu.I("created_at").Gte(since)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count recent interactions", err)
	}

	return count, nil
}

// CountBySeverity returns interaction counts grouped by severity
func (a *InteractionAdapter) CountBySeverity(ctx context.Context) (map[entities.Severity]int, error) {
	query, args, err := a.db.Select("severity", goqu.COUNT("*")).
		From("drug_interactions").
		GroupBy("severity").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count interactions by severity", err)
	}
	defer rows.Close()

	counts := make(map[entities.Severity]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan severity count", err)
		}
		counts[entities.ParseSeverity(severity)] += count
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating severity counts", err)
	}

	return counts, nil
}

func (a *InteractionAdapter) queryInteractions(ctx context.Context, query string, args ...interface{}) ([]*entities.Interaction, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query interactions", err)
	}
	defer rows.Close()

	var interactions []*entities.Interaction
	for rows.Next() {
		interaction, err := a.scanInteraction(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan interaction", err)
		}
		interactions = append(interactions, interaction)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating interactions", err)
	}

	return interactions, nil
}

func (a *InteractionAdapter) scanInteraction(row rowScanner) (*entities.Interaction, error) {
	interaction := &entities.Interaction{}
	var drug1Rxcui, drug2Rxcui, mechanism, significance, recommendation, evidence sql.NullString
	var severity string

	err := row.Scan(
		&interaction.ID,
		&interaction.Drug1ID,
		&interaction.Drug2ID,
		&drug1Rxcui,
		&drug2Rxcui,
		&severity,
		&mechanism,
		&significance,
		&recommendation,
		&evidence,
		&interaction.SourceID,
		&interaction.ConfidenceScore,
		&interaction.InteractionType,
		&interaction.LastVerified,
		&interaction.CreatedAt,
		&interaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	interaction.Drug1Rxcui = drug1Rxcui.String
	interaction.Drug2Rxcui = drug2Rxcui.String
	interaction.Severity = entities.ParseSeverity(severity)
	interaction.Mechanism = mechanism.String
	interaction.ClinicalSignificance = significance.String
	interaction.ManagementRecommendation = recommendation.String
	interaction.EvidenceLevel = evidence.String

	return interaction, nil
}
