package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultReminderHorizonDays is how far ahead the due-soon classification looks
const DefaultReminderHorizonDays = 7

// InvoiceStatusService derives invoice statuses from recorded payment facts
// and classifies open invoices by due-date proximity for reminders.
type InvoiceStatusService struct {
	scope       TransactionScope
	classifier  *billing.DueDateClassifier
	eventBus    shared.EventPublisher
	notifier    *Notifier
	clock       shared.Clock
	logger      *zap.Logger
	horizonDays int
}

// NewInvoiceStatusService creates a new InvoiceStatusService
func NewInvoiceStatusService(
	scope TransactionScope,
	eventBus shared.EventPublisher,
	notifier *Notifier,
	clock shared.Clock,
	logger *zap.Logger,
) *InvoiceStatusService {
	return &InvoiceStatusService{
		scope:       scope,
		classifier:  billing.NewDueDateClassifier(),
		eventBus:    eventBus,
		notifier:    notifier,
		clock:       clock,
		logger:      logger,
		horizonDays: DefaultReminderHorizonDays,
	}
}

// SetReminderHorizon overrides the due-soon lookahead window
func (s *InvoiceStatusService) SetReminderHorizon(days int) {
	if days > 0 {
		s.horizonDays = days
	}
}

// Reconcile runs the invoice status rules over every open invoice and emits
// due-soon reminders for the coming horizon. Safe to re-run: unchanged
// payment facts produce no transition and reminders are deduplicated per day.
func (s *InvoiceStatusService) Reconcile(ctx context.Context) (*RunSummary, error) {
	now := s.clock.Now()
	summary := newRunSummary("reconcile-invoice-status", now)

	var open []billing.Invoice
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		open, err = repos.InvoiceRepo().FindOpen(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("listing open invoices: %w", err)
	}

	for i := range open {
		id := open[i].ID
		summary.Processed++

		transitioned, err := s.reconcileOne(ctx, id)
		if err != nil {
			if !isPerDocumentFailure(err) {
				return nil, fmt.Errorf("reconciling invoice %s: %w", id, err)
			}
			s.logger.Warn("skipping invoice after per-document failure",
				zap.String("invoice_id", id.String()),
				zap.Error(err),
			)
			summary.Skipped++
			continue
		}
		if transitioned {
			summary.Transitions++
		}
	}

	if err := s.emitDueSoonReminders(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info("invoice status reconciliation completed", summary.finish(s.clock.Now()).Fields()...)
	return summary, nil
}

// reconcileOne reloads the invoice under a row lock, applies the transition
// rules and persists the result. It reports whether a transition happened.
func (s *InvoiceStatusService) reconcileOne(ctx context.Context, id uuid.UUID) (bool, error) {
	now := s.clock.Now()
	var transitioned bool
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		transition := inv.Reconcile(now)
		if transition == nil {
			return nil
		}

		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}

		transitioned = true
		events = inv.GetDomainEvents()
		inv.ClearDomainEvents()

		s.logger.Debug("invoice transitioned",
			zap.String("invoice_id", id.String()),
			zap.String("from", transition.From),
			zap.String("to", transition.To),
		)
		return nil
	})
	if err != nil {
		return false, err
	}

	if len(events) > 0 {
		if pubErr := s.eventBus.Publish(ctx, events...); pubErr != nil {
			s.logger.Error("failed to publish invoice events", zap.Error(pubErr))
		}
	}
	return transitioned, nil
}

// emitDueSoonReminders classifies the open set and hands due-soon notices to
// the notifier, keyed per (invoice, day) so same-day re-runs stay silent.
// The set is listed again after the transition pass: an invoice settled or
// closed moments ago must not be reminded from its earlier snapshot.
func (s *InvoiceStatusService) emitDueSoonReminders(ctx context.Context, summary *RunSummary) error {
	ref := s.clock.Now()

	var open []billing.Invoice
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		open, err = repos.InvoiceRepo().FindOpen(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("listing invoices for reminders: %w", err)
	}

	items := make([]billing.DueItem, 0, len(open))
	for i := range open {
		items = append(items, open[i].DueItem())
	}

	classification := s.classifier.Classify(items, ref, s.horizonDays)
	for _, item := range classification.DueSoon {
		sent, err := s.notifier.Notify(ctx, shared.Notification{
			EventType: "billing.invoice.due_soon",
			EntityID:  item.ID,
			DedupKey:  billing.DueSoonKey(item, ref),
			Payload: map[string]any{
				"due_date": item.DueDate,
			},
		})
		if err != nil {
			s.logger.Error("failed to emit due-soon reminder",
				zap.String("invoice_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if sent {
			summary.Notifications++
		}
	}
	return nil
}

// isPerDocumentFailure reports whether the error is confined to one document
// (corrupt record, rejected transition) as opposed to a store-level failure
// that must abort the run.
func isPerDocumentFailure(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}
