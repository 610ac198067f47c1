package repositories

import (
	"context"
	"time"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// InteractionRepository defines data operations for stored drug interactions
type InteractionRepository interface {
	// Create creates a new interaction record
	Create(ctx context.Context, interaction *entities.Interaction) error

	// Update refreshes an existing interaction record
	Update(ctx context.Context, interaction *entities.Interaction) error

	// FindByPairAndSource retrieves the interaction for an unordered drug
	// pair and source, or a not-found error when none exists
	FindByPairAndSource(ctx context.Context, drug1ID, drug2ID, sourceID string) (*entities.Interaction, error)

	// FindByPair retrieves the first interaction for an unordered drug pair
	// regardless of source
	FindByPair(ctx context.Context, drug1ID, drug2ID string) (*entities.Interaction, error)

	// ListByDrugSet retrieves interactions where both drugs are in the set
	ListByDrugSet(ctx context.Context, drugIDs []string) ([]*entities.Interaction, error)

	// ListVerifiedSince retrieves interactions last verified at or after the
	// given time
	ListVerifiedSince(ctx context.Context, since time.Time) ([]*entities.Interaction, error)

	// TouchVerifiedSince bumps updated_at on interactions last verified at
	// or after the given time, returning the number of rows touched
	TouchVerifiedSince(ctx context.Context, since time.Time) (int, error)

	// Count returns the total number of interaction records
	Count(ctx context.Context) (int, error)

	// CountCreatedSince returns the number of interactions created at or
	// after the given time
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)

	// CountBySeverity returns interaction counts grouped by severity
	CountBySeverity(ctx context.Context) (map[entities.Severity]int, error)
}
