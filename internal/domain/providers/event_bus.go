package providers

import (
	"context"
	"fmt"

	"github.com/gharbazaar/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// property mutation events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PropertyEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PropertyEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelPropertyUpdates is the channel carrying all listing mutations
	EventChannelPropertyUpdates = "properties:updates"

	// EventChannelOwnerPrefix is the prefix for owner-scoped channels
	EventChannelOwnerPrefix = "properties:owner:"
)

// GetOwnerChannel returns the notification channel for one owner's listings
func GetOwnerChannel(owner string) string {
	return fmt.Sprintf("%s%s", EventChannelOwnerPrefix, owner)
}
