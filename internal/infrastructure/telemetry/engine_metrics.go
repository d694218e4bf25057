package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EngineMetrics tracks the reconciliation engine's business metrics:
// batch run outcomes, status transitions, notifications and balance
// drift corrections.
type EngineMetrics struct {
	logger *zap.Logger

	runsTotal          *Counter
	runFailuresTotal   *Counter
	processedTotal     *Counter
	transitionsTotal   *Counter
	skippedTotal       *Counter
	notificationsTotal *Counter
	eventsTotal        *Counter
	driftTotal         *Counter
	driftAmount        *FloatGauge
	runDuration        *Histogram
}

// NewEngineMetrics creates the engine metric instruments on the given provider.
func NewEngineMetrics(mp *MeterProvider, logger *zap.Logger) (*EngineMetrics, error) {
	meter := mp.Meter("finoffice.engine")
	em := &EngineMetrics{logger: logger}

	var err error
	if em.runsTotal, err = NewCounter(meter,
		"finoffice_runs_total", "Total number of batch runs", "{runs}"); err != nil {
		return nil, err
	}
	if em.runFailuresTotal, err = NewCounter(meter,
		"finoffice_run_failures_total", "Total number of failed batch runs", "{runs}"); err != nil {
		return nil, err
	}
	if em.processedTotal, err = NewCounter(meter,
		"finoffice_documents_processed_total", "Total number of documents processed by batch runs", "{documents}"); err != nil {
		return nil, err
	}
	if em.transitionsTotal, err = NewCounter(meter,
		"finoffice_status_transitions_total", "Total number of document status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if em.skippedTotal, err = NewCounter(meter,
		"finoffice_documents_skipped_total", "Total number of documents skipped after per-document failures", "{documents}"); err != nil {
		return nil, err
	}
	if em.notificationsTotal, err = NewCounter(meter,
		"finoffice_notifications_total", "Total number of notifications handed to the sink", "{notifications}"); err != nil {
		return nil, err
	}
	if em.eventsTotal, err = NewCounter(meter,
		"finoffice_domain_events_total", "Total number of domain events published on the bus", "{events}"); err != nil {
		return nil, err
	}
	if em.driftTotal, err = NewCounter(meter,
		"finoffice_balance_drift_corrections_total", "Total number of balance drift corrections", "{corrections}"); err != nil {
		return nil, err
	}
	if em.driftAmount, err = NewFloatGauge(meter,
		"finoffice_balance_drift_amount", "Absolute drift of the most recent correction per account", "{currency}"); err != nil {
		return nil, err
	}
	if em.runDuration, err = NewHistogram(meter,
		"finoffice_run_duration_seconds", "Batch run duration", "s"); err != nil {
		return nil, err
	}

	return em, nil
}

// RecordRun records the outcome of one batch run.
func (em *EngineMetrics) RecordRun(ctx context.Context, task string, processed, transitions, notifications, skipped int, duration time.Duration) {
	attr := AttrTask.String(task)
	em.runsTotal.Inc(ctx, attr)
	em.processedTotal.Add(ctx, int64(processed), attr)
	em.transitionsTotal.Add(ctx, int64(transitions), attr)
	em.notificationsTotal.Add(ctx, int64(notifications), attr)
	em.skippedTotal.Add(ctx, int64(skipped), attr)
	em.runDuration.RecordDuration(ctx, duration, attr)
}

// RecordRunFailure records a batch run that aborted with an error.
func (em *EngineMetrics) RecordRunFailure(ctx context.Context, task string) {
	em.runFailuresTotal.Inc(ctx, AttrTask.String(task))
}

// RecordDomainEvent counts one published domain event by document kind and type.
func (em *EngineMetrics) RecordDomainEvent(ctx context.Context, documentKind, eventType string) {
	em.eventsTotal.Inc(ctx,
		AttrDocumentKind.String(documentKind),
		AttrEventType.String(eventType),
	)
}

// RecordDriftCorrection records one balance drift correction.
func (em *EngineMetrics) RecordDriftCorrection(ctx context.Context, accountKind string, drift decimal.Decimal) {
	attr := AttrAccountKind.String(accountKind)
	em.driftTotal.Inc(ctx, attr)
	f, _ := drift.Abs().Float64()
	em.driftAmount.Record(ctx, f, attr)
}
