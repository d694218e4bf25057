package reconciliation

import (
	"context"

	"github.com/finoffice/backend/internal/domain/authz"
	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordPaymentPolicy is the default rule for interactive payment
// operations: super admins, or subjects carrying the finance role.
var RecordPaymentPolicy = authz.Allow(authz.HasRole("finance"))

// PaymentService records payment facts against invoices, interactively or by
// consuming a validated credit note. Recording a payment re-derives the
// invoice status at once through the same rules the scheduled pass uses.
type PaymentService struct {
	scope    TransactionScope
	eventBus shared.EventPublisher
	policy   authz.Predicate
	clock    shared.Clock
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	eventBus shared.EventPublisher,
	policy authz.Predicate,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentService {
	if policy == nil {
		policy = RecordPaymentPolicy
	}
	return &PaymentService{
		scope:    scope,
		eventBus: eventBus,
		policy:   policy,
		clock:    clock,
		logger:   logger,
	}
}

func (s *PaymentService) authorize(actor authz.Subject, invoiceID uuid.UUID) error {
	if s.policy(actor, authz.Resource{Kind: "billing.invoice", ID: invoiceID}) {
		return nil
	}
	return shared.NewDomainError("FORBIDDEN", "Subject is not allowed to record payments")
}

// RecordPayment applies a payment to the invoice and returns the status
// transition the payment caused, if any. Overpayment is rejected by the
// aggregate before anything is written.
func (s *PaymentService) RecordPayment(
	ctx context.Context,
	actor authz.Subject,
	invoiceID uuid.UUID,
	amount valueobject.Money,
	method billing.PaymentMethod,
) (*billing.StatusTransition, error) {
	if err := s.authorize(actor, invoiceID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	var transition *billing.StatusTransition
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if _, err := inv.RecordPayment(amount, method, now); err != nil {
			return err
		}
		transition = inv.Reconcile(now)
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		events = inv.GetDomainEvents()
		inv.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", amount.Amount().StringFixed(2)),
		zap.String("method", string(method)),
	)
	return transition, nil
}

// CompensateCreditNote consumes part of a validated credit note against an
// invoice's open balance. Note and invoice are updated in one transaction;
// the consumed amount appears on the invoice as a CREDIT_NOTE payment.
func (s *PaymentService) CompensateCreditNote(
	ctx context.Context,
	actor authz.Subject,
	creditNoteID, invoiceID uuid.UUID,
	amount valueobject.Money,
) (*billing.StatusTransition, error) {
	if err := s.authorize(actor, invoiceID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	var transition *billing.StatusTransition
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cn, err := repos.CreditNoteRepo().FindByID(ctx, creditNoteID)
		if err != nil {
			return err
		}
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := cn.CompensateAgainst(inv, amount, now); err != nil {
			return err
		}
		transition = inv.Reconcile(now)

		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		if err := repos.CreditNoteRepo().Save(ctx, cn); err != nil {
			return err
		}

		events = append(inv.GetDomainEvents(), cn.GetDomainEvents()...)
		inv.ClearDomainEvents()
		cn.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("credit note compensated",
		zap.String("credit_note_id", creditNoteID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", amount.Amount().StringFixed(2)),
	)
	return transition, nil
}

func (s *PaymentService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish billing events", zap.Error(err))
	}
}
