package entities

import (
	"time"
)

// PropertyEventType describes what happened to a listing
type PropertyEventType string

const (
	EventPropertyCreated PropertyEventType = "property_created"
	EventPropertyUpdated PropertyEventType = "property_updated"
	EventPropertyDeleted PropertyEventType = "property_deleted"
)

// PropertyEvent is published on the event bus after a successful mutation.
// Subscribers use it for cross-instance cache invalidation and for streaming
// user-facing notifications.
type PropertyEvent struct {
	ID         string            `json:"id"`
	EventType  PropertyEventType `json:"event_type"`
	PropertyID int64             `json:"property_id"`
	Owner      string            `json:"owner"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
}
