package repositories

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// UpdateSessionRepository defines data operations for pipeline audit sessions
type UpdateSessionRepository interface {
	// Create creates a new update session in the running state
	Create(ctx context.Context, session *entities.UpdateSession) error

	// Update persists a session's terminal state and counters
	Update(ctx context.Context, session *entities.UpdateSession) error

	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id string) (*entities.UpdateSession, error)

	// ListRecent retrieves the most recent sessions by start time
	ListRecent(ctx context.Context, limit int) ([]*entities.UpdateSession, error)
}
