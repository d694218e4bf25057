package notification

import (
	"context"

	"github.com/finoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoggingSink is a NotificationSink that writes each notification as a
// structured log line. It stands in for the external dispatcher (mail,
// webhook) which is outside this service's boundary: operators tail the
// notification log or ship it to the real dispatcher.
type LoggingSink struct {
	logger *zap.Logger
}

// NewLoggingSink creates a sink writing to the given logger
func NewLoggingSink(logger *zap.Logger) *LoggingSink {
	return &LoggingSink{logger: logger.Named("notification")}
}

// Notify logs the notification
func (s *LoggingSink) Notify(_ context.Context, n shared.Notification) error {
	s.logger.Info("notification dispatched",
		zap.String("event_type", n.EventType),
		zap.String("entity_id", n.EntityID.String()),
		zap.String("dedup_key", n.DedupKey),
		zap.Any("payload", n.Payload),
	)
	return nil
}

// Ensure LoggingSink implements NotificationSink
var _ shared.NotificationSink = (*LoggingSink)(nil)
