package repositories

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// ClinicalAlertRepository defines read access to safety alerts
type ClinicalAlertRepository interface {
	// ListActiveByDrugNames retrieves active alerts whose affected-drug set
	// intersects the given drug names, ordered by priority then severity
	ListActiveByDrugNames(ctx context.Context, drugNames []string) ([]*entities.ClinicalAlert, error)

	// ListActiveBySeverity retrieves active alerts with the given severity
	ListActiveBySeverity(ctx context.Context, severity entities.Severity) ([]*entities.ClinicalAlert, error)

	// CountActive returns the number of active alerts
	CountActive(ctx context.Context) (int, error)
}
