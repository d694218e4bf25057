package shared

import (
	"context"

	"github.com/google/uuid"
)

// Notification is the payload handed to the external dispatcher. The engine
// never renders or delivers anything itself; it only describes what happened.
type Notification struct {
	// EventType identifies the kind of notification, e.g. "billing.invoice.overdue"
	EventType string `json:"event_type"`
	// EntityID is the document or account the notification is about
	EntityID uuid.UUID `json:"entity_id"`
	// DedupKey is a stable idempotency key; re-running a procedure with
	// unchanged inputs produces the same key, letting the sink suppress
	// duplicates. Empty means the notification is always delivered.
	DedupKey string `json:"dedup_key,omitempty"`
	// Payload carries event-specific details for the dispatcher
	Payload map[string]any `json:"payload,omitempty"`
}

// NotificationSink accepts domain notifications for external delivery
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}

// NotificationSinkFunc adapts a function to the NotificationSink interface
type NotificationSinkFunc func(ctx context.Context, n Notification) error

// Notify calls the underlying function
func (f NotificationSinkFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
