package event

import (
	"context"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/treasury"
	"github.com/finoffice/backend/internal/infrastructure/telemetry"
)

// MetricsHandler feeds domain events into the engine metrics: every event
// is counted by document kind and type, and balance drift events also
// record the drift amount. Subscribing it to the bus keeps the telemetry
// wiring out of the application services.
type MetricsHandler struct {
	metrics *telemetry.EngineMetrics
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics *telemetry.EngineMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler subscribes to
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		"InvoicePaid",
		"InvoiceOverdue",
		"QuoteExpired",
		"CreditNoteCompensated",
		"CreditInstallmentPaid",
		"CreditInstallmentOverdue",
		"CreditOverdue",
		"CreditCompleted",
		"BalanceDriftDetected",
		"LowBalanceDetected",
	}
}

// Handle counts the event, plus the drift amount for drift events
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.metrics.RecordDomainEvent(ctx, event.AggregateType(), event.EventType())
	if drift, ok := event.(*treasury.BalanceDriftDetectedEvent); ok {
		h.metrics.RecordDriftCorrection(ctx, string(drift.AccountKind), drift.Drift)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
