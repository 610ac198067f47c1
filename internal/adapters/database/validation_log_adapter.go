package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

var validationLogColumns = []interface{}{
	"id", "interaction_id", "validation_source", "validation_status",
	"validation_score", "validation_notes", "validated_by", "validated_at",
}

// ValidationLogAdapter implements ValidationLogRepository. The table is
// append-only; there are no update or delete paths.
type ValidationLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewValidationLogAdapter creates a new validation log adapter
func NewValidationLogAdapter(client *postgres.Client) repositories.ValidationLogRepository {
	return &ValidationLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create appends a validation log entry
func (a *ValidationLogAdapter) Create(ctx context.Context, entry *entities.ValidationLog) error {
	record := goqu.Record{
		"id":                entry.ID,
		"interaction_id":    entry.InteractionID,
		"validation_source": entry.ValidationSource,
		"validation_status": entry.ValidationStatus,
		"validation_score":  entry.ValidationScore,
		"validation_notes":  sql.NullString{String: entry.ValidationNotes, Valid: entry.ValidationNotes != ""},
		"validated_by":      entry.ValidatedBy,
		"validated_at":      entry.ValidatedAt,
	}

	query, args, err := a.db.Insert("validation_logs").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create validation log", err)
	}

	return nil
}

// HasRecentValidation reports whether the interaction has a validation entry
// at or after the given time
func (a *ValidationLogAdapter) HasRecentValidation(ctx context.Context, interactionID string, since time.Time) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("validation_logs").
		Where(goqu.Ex{"interaction_id": interactionID}).
		Where(goqu.I("validated_at").Gte(since)).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check recent validation", err)
	}

	return count > 0, nil
}

// ListByInteraction retrieves validation entries for an interaction, newest
// first
func (a *ValidationLogAdapter) ListByInteraction(ctx context.Context, interactionID string) ([]*entities.ValidationLog, error) {
	query, args, err := a.db.Select(validationLogColumns...).
		From("validation_logs").
		Where(goqu.Ex{"interaction_id": interactionID}).
		Order(goqu.I("validated_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list validation logs", err)
	}
	defer rows.Close()

	var entries []*entities.ValidationLog
	for rows.Next() {
		entry := &entities.ValidationLog{}
		var notes sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.InteractionID,
			&entry.ValidationSource,
			&entry.ValidationStatus,
			&entry.ValidationScore,
			&notes,
			&entry.ValidatedBy,
			&entry.ValidatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan validation log", err)
		}

		entry.ValidationNotes = notes.String
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating validation logs", err)
	}

	return entries, nil
}
