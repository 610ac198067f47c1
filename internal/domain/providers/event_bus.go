package providers

import (
	"context"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to clinical
// events (session lifecycle, emergency alerts).
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.ClinicalEvent) error

	// Subscribe subscribes to events on a channel; the returned channel is
	// closed when ctx is cancelled
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ClinicalEvent, error)

	// Close shuts down the event bus and all subscriptions
	Close() error
}
