package repositories

import (
	"context"
	"time"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// ValidationLogRepository defines operations for the append-only validation
// trail. Logs are created once and never updated or deleted.
type ValidationLogRepository interface {
	// Create appends a validation log entry
	Create(ctx context.Context, log *entities.ValidationLog) error

	// HasRecentValidation reports whether the interaction has a validation
	// entry at or after the given time
	HasRecentValidation(ctx context.Context, interactionID string, since time.Time) (bool, error)

	// ListByInteraction retrieves validation entries for an interaction,
	// newest first
	ListByInteraction(ctx context.Context, interactionID string) ([]*entities.ValidationLog, error)
}
