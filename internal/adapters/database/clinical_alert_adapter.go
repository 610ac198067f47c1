package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

var clinicalAlertColumns = []interface{}{
	"id", "alert_type", "severity", "title", "description", "recommendation",
	"affected_drugs", "priority", "source_id", "is_active", "effective_date",
	"created_at", "updated_at",
}

// ClinicalAlertAdapter implements ClinicalAlertRepository. Alerts are
// ingested elsewhere; this adapter only reads them.
type ClinicalAlertAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClinicalAlertAdapter creates a new clinical alert adapter
func NewClinicalAlertAdapter(client *postgres.Client) repositories.ClinicalAlertRepository {
	return &ClinicalAlertAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListActiveByDrugNames retrieves active alerts whose affected-drug set
// intersects the given drug names, ordered by priority then severity
func (a *ClinicalAlertAdapter) ListActiveByDrugNames(ctx context.Context, drugNames []string) ([]*entities.ClinicalAlert, error) {
	if len(drugNames) == 0 {
		return []*entities.ClinicalAlert{}, nil
	}

	query, args, err := a.db.Select(clinicalAlertColumns...).
		From("clinical_alerts").
		Where(goqu.Ex{"is_active": true}).
		Where(goqu.L("affected_drugs && ?", pq.Array(drugNames))).
		Order(goqu.I("priority").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	alerts, err := a.queryAlerts(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	sortAlertsBySeverityWithinPriority(alerts)
	return alerts, nil
}

// ListActiveBySeverity retrieves active alerts with the given severity
func (a *ClinicalAlertAdapter) ListActiveBySeverity(ctx context.Context, severity entities.Severity) ([]*entities.ClinicalAlert, error) {
	query, args, err := a.db.Select(clinicalAlertColumns...).
		From("clinical_alerts").
		Where(goqu.Ex{"is_active": true, "severity": string(severity)}).
		Order(goqu.I("priority").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryAlerts(ctx, query, args...)
}

// CountActive returns the number of active alerts
func (a *ClinicalAlertAdapter) CountActive(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("clinical_alerts").
		Where(goqu.Ex{"is_active": true}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count active alerts", err)
	}

	return count, nil
}

func (a *ClinicalAlertAdapter) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]*entities.ClinicalAlert, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query clinical alerts", err)
	}
	defer rows.Close()

	var alerts []*entities.ClinicalAlert
	for rows.Next() {
		alert := &entities.ClinicalAlert{}
		var description, recommendation, sourceID sql.NullString

		err := rows.Scan(
			&alert.ID,
			&alert.AlertType,
			&alert.Severity,
			&alert.Title,
			&description,
			&recommendation,
			pq.Array(&alert.AffectedDrugs),
			&alert.Priority,
			&sourceID,
			&alert.IsActive,
			&alert.EffectiveDate,
			&alert.CreatedAt,
			&alert.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan clinical alert", err)
		}

		alert.Description = description.String
		alert.Recommendation = recommendation.String
		alert.SourceID = sourceID.String

		alerts = append(alerts, alert)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating clinical alerts", err)
	}

	return alerts, nil
}

// sortAlertsBySeverityWithinPriority is a stable tiebreak for alerts that
// share the same priority. Input is already ordered by priority ascending.
func sortAlertsBySeverityWithinPriority(alerts []*entities.ClinicalAlert) {
	for i := 1; i < len(alerts); i++ {
		for j := i; j > 0; j-- {
			if alerts[j-1].Priority == alerts[j].Priority &&
				alerts[j].Severity.Rank() < alerts[j-1].Severity.Rank() {
				alerts[j-1], alerts[j] = alerts[j], alerts[j-1]
			} else {
				break
			}
		}
	}
}
