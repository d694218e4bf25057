package reconciliation

import (
	"context"
	"fmt"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/credit"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditService drives the amortization side of the ledger: interactive
// installment payments and the scheduled sweep that marks late installments
// overdue and reminds about upcoming ones.
type CreditService struct {
	scope      TransactionScope
	classifier *billing.DueDateClassifier
	eventBus   shared.EventPublisher
	notifier   *Notifier
	clock      shared.Clock
	logger     *zap.Logger
}

// NewCreditService creates a new CreditService
func NewCreditService(
	scope TransactionScope,
	classifier *billing.DueDateClassifier,
	eventBus shared.EventPublisher,
	notifier *Notifier,
	clock shared.Clock,
	logger *zap.Logger,
) *CreditService {
	return &CreditService{
		scope:      scope,
		classifier: classifier,
		eventBus:   eventBus,
		notifier:   notifier,
		clock:      clock,
		logger:     logger,
	}
}

// AdvancePayment settles the installment with the given sequence on the
// credit. Installments are payable strictly in schedule order; requesting any
// other sequence returns a credit.OutOfSequenceError and changes nothing.
func (s *CreditService) AdvancePayment(ctx context.Context, creditID uuid.UUID, sequence int) (*credit.Installment, error) {
	now := s.clock.Now()
	var paid *credit.Installment
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CreditRepo().FindByID(ctx, creditID)
		if err != nil {
			return err
		}

		inst, err := c.AdvancePayment(sequence, now)
		if err != nil {
			return err
		}
		if err := repos.CreditRepo().Save(ctx, c); err != nil {
			return err
		}

		paid = inst
		events = c.GetDomainEvents()
		c.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(events) > 0 {
		if pubErr := s.eventBus.Publish(ctx, events...); pubErr != nil {
			s.logger.Error("failed to publish credit events", zap.Error(pubErr))
		}
	}

	s.logger.Info("installment settled",
		zap.String("credit_id", creditID.String()),
		zap.Int("sequence", sequence),
	)
	return paid, nil
}

// Sweep walks every active or overdue credit, marks pending installments past
// their due date as overdue, and emits a reminder for each installment due
// within daysBefore days. Reminder dedup is per (installment, day), so a
// same-day re-run cannot re-notify. With updateStatus false the sweep is
// report-only: late installments are counted and logged but nothing is
// persisted and no overdue events are published.
func (s *CreditService) Sweep(ctx context.Context, daysBefore int, updateStatus bool) (*RunSummary, error) {
	now := s.clock.Now()
	summary := newRunSummary("reconcile-credit-sweep", now)

	var sweepable []credit.Credit
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sweepable, err = repos.CreditRepo().FindSweepable(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("listing sweepable credits: %w", err)
	}

	for i := range sweepable {
		id := sweepable[i].ID
		summary.Processed++

		if err := s.sweepOne(ctx, id, daysBefore, updateStatus, summary); err != nil {
			if !isPerDocumentFailure(err) {
				return nil, fmt.Errorf("sweeping credit %s: %w", id, err)
			}
			s.logger.Warn("skipping credit after per-document failure",
				zap.String("credit_id", id.String()),
				zap.Error(err),
			)
			summary.Skipped++
		}
	}

	s.logger.Info("credit sweep completed", summary.finish(s.clock.Now()).Fields()...)
	return summary, nil
}

func (s *CreditService) sweepOne(ctx context.Context, id uuid.UUID, daysBefore int, updateStatus bool, summary *RunSummary) error {
	now := s.clock.Now()
	var transitioned []credit.Installment
	var pending []credit.Installment
	var creditNumber string
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CreditRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		transitioned = c.SweepOverdue(now)
		if updateStatus && len(transitioned) > 0 {
			if err := repos.CreditRepo().Save(ctx, c); err != nil {
				return err
			}
		}

		creditNumber = c.CreditNumber
		for _, inst := range c.Installments {
			if inst.Status == credit.InstallmentStatusPending {
				pending = append(pending, inst)
			}
		}
		events = c.GetDomainEvents()
		c.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	summary.Transitions += len(transitioned)

	if !updateStatus {
		for _, inst := range transitioned {
			s.logger.Info("installment past due (report-only sweep)",
				zap.String("credit_id", id.String()),
				zap.String("credit_number", creditNumber),
				zap.Int("sequence", inst.Sequence),
				zap.Time("due_date", inst.DueDate),
			)
		}
	} else if len(events) > 0 {
		if pubErr := s.eventBus.Publish(ctx, events...); pubErr != nil {
			s.logger.Error("failed to publish credit events", zap.Error(pubErr))
		}
	}

	items := make([]billing.DueItem, 0, len(pending))
	for _, inst := range pending {
		items = append(items, billing.DueItem{
			Kind:    billing.DocumentKindInstallment,
			ID:      inst.ID,
			DueDate: inst.DueDate,
		})
	}
	classified := s.classifier.Classify(items, now, daysBefore)
	for _, item := range classified.DueSoon {
		sent, err := s.notifier.Notify(ctx, shared.Notification{
			EventType: "credit.installment.due_soon",
			EntityID:  item.ID,
			DedupKey:  billing.DueSoonKey(item, now),
			Payload: map[string]any{
				"credit_id":     id.String(),
				"credit_number": creditNumber,
				"due_date":      item.DueDate.Format("2006-01-02"),
			},
		})
		if err != nil {
			s.logger.Error("failed to emit installment reminder",
				zap.String("installment_id", item.ID.String()),
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
