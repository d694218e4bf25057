package reconciliation

import (
	"context"

	"github.com/finoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier hands notifications to the external dispatcher, suppressing
// duplicates through the idempotency store. Classification notices carry a
// per-(document, day) dedup key, so re-running a procedure the same day does
// not re-emit them; transition notices fire once by construction and may pass
// an empty key.
type Notifier struct {
	sink   shared.NotificationSink
	store  shared.IdempotencyStore
	config shared.IdempotencyConfig
	logger *zap.Logger
}

// NewNotifier creates a dedup-aware notifier
func NewNotifier(sink shared.NotificationSink, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *Notifier {
	return &Notifier{
		sink:   sink,
		store:  store,
		config: config,
		logger: logger,
	}
}

// Notify emits the notification unless its dedup key was already delivered.
// Returns true when the notification was actually handed to the sink.
func (n *Notifier) Notify(ctx context.Context, notification shared.Notification) (bool, error) {
	if n.config.Enabled && notification.DedupKey != "" {
		fresh, err := n.store.MarkProcessed(ctx, notification.DedupKey, n.config.TTL)
		if err != nil {
			return false, err
		}
		if !fresh {
			n.logger.Debug("notification suppressed as duplicate",
				zap.String("event_type", notification.EventType),
				zap.String("dedup_key", notification.DedupKey),
			)
			return false, nil
		}
	}

	if err := n.sink.Notify(ctx, notification); err != nil {
		return false, err
	}
	return true, nil
}
