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

var updateSessionColumns = []interface{}{
	"id", "session_type", "trigger_type", "triggered_by", "start_time",
	"end_time", "status", "records_added", "records_updated",
	"total_api_calls", "success_rate", "summary_report",
}

// UpdateSessionAdapter implements UpdateSessionRepository
type UpdateSessionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUpdateSessionAdapter creates a new update session adapter
func NewUpdateSessionAdapter(client *postgres.Client) repositories.UpdateSessionRepository {
	return &UpdateSessionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new update session in the running state
func (a *UpdateSessionAdapter) Create(ctx context.Context, session *entities.UpdateSession) error {
	record := goqu.Record{
		"id":              session.ID,
		"session_type":    session.SessionType,
		"trigger_type":    session.TriggerType,
		"triggered_by":    session.TriggeredBy,
		"start_time":      session.StartTime,
		"status":          session.Status,
		"records_added":   session.RecordsAdded,
		"records_updated": session.RecordsUpdated,
		"total_api_calls": session.TotalAPICalls,
		"success_rate":    session.SuccessRate,
	}

	query, args, err := a.db.Insert("update_sessions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create update session", err)
	}

	return nil
}

// Update persists a session's terminal state and counters
func (a *UpdateSessionAdapter) Update(ctx context.Context, session *entities.UpdateSession) error {
	record := goqu.Record{
		"end_time":        session.EndTime,
		"status":          session.Status,
		"records_added":   session.RecordsAdded,
		"records_updated": session.RecordsUpdated,
		"total_api_calls": session.TotalAPICalls,
		"success_rate":    session.SuccessRate,
		"summary_report":  summaryReportValue(session),
	}

	query, args, err := a.db.Update("update_sessions").
		Set(record).
		Where(goqu.Ex{"id": session.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update session", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("update session with id %s not found", session.ID))
	}

	return nil
}

// GetByID retrieves a session by ID
func (a *UpdateSessionAdapter) GetByID(ctx context.Context, id string) (*entities.UpdateSession, error) {
	query, args, err := a.db.Select(updateSessionColumns...).
		From("update_sessions").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	session, err := a.scanSession(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("update session with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get update session", err)
	}

	return session, nil
}

// ListRecent retrieves the most recent sessions by start time
func (a *UpdateSessionAdapter) ListRecent(ctx context.Context, limit int) ([]*entities.UpdateSession, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := a.db.Select(updateSessionColumns...).
		From("update_sessions").
		Order(goqu.I("start_time").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list update sessions", err)
	}
	defer rows.Close()

	var sessions []*entities.UpdateSession
	for rows.Next() {
		session, err := a.scanSession(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan update session", err)
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating update sessions", err)
	}

	return sessions, nil
}

func (a *UpdateSessionAdapter) scanSession(row rowScanner) (*entities.UpdateSession, error) {
	session := &entities.UpdateSession{}
	var endTime sql.NullTime
	var summary []byte

	err := row.Scan(
		&session.ID,
		&session.SessionType,
		&session.TriggerType,
		&session.TriggeredBy,
		&session.StartTime,
		&endTime,
		&session.Status,
		&session.RecordsAdded,
		&session.RecordsUpdated,
		&session.TotalAPICalls,
		&session.SuccessRate,
		&summary,
	)
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		t := endTime.Time
		session.EndTime = &t
	}
	if len(summary) > 0 {
		session.SummaryReport = summary
	}

	return session, nil
}

func summaryReportValue(session *entities.UpdateSession) interface{} {
	if len(session.SummaryReport) == 0 {
		return nil
	}
	return []byte(session.SummaryReport)
}
