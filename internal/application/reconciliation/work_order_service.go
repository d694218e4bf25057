package reconciliation

import (
	"context"
	"fmt"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkOrderService derives work-order statuses from their line settlement
// state, and exposes the interactive line-settlement operation the derivation
// feeds on.
type WorkOrderService struct {
	scope    TransactionScope
	notifier *Notifier
	clock    shared.Clock
	logger   *zap.Logger
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(
	scope TransactionScope,
	notifier *Notifier,
	clock shared.Clock,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		scope:    scope,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// SettleLine marks one line of a work order as settled. The aggregate status
// is re-derived immediately so a fully settled order completes without
// waiting for the next scheduled pass.
func (s *WorkOrderService) SettleLine(ctx context.Context, orderID, lineID uuid.UUID) (*billing.StatusTransition, error) {
	now := s.clock.Now()
	var transition *billing.StatusTransition

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := wo.SettleLine(lineID, now); err != nil {
			return err
		}
		transition = wo.Reconcile(now)
		return repos.WorkOrderRepo().Save(ctx, wo)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("work order line settled",
		zap.String("order_id", orderID.String()),
		zap.String("line_id", lineID.String()),
	)
	return transition, nil
}

// Reconcile re-derives the status of every in-progress or overdue work order.
// Each order runs in its own transaction; per-document failures are skipped.
func (s *WorkOrderService) Reconcile(ctx context.Context) (*RunSummary, error) {
	summary := newRunSummary("reconcile-work-orders", s.clock.Now())

	var active []billing.WorkOrder
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		active, err = repos.WorkOrderRepo().FindActive(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("listing active work orders: %w", err)
	}

	for i := range active {
		id := active[i].ID
		summary.Processed++

		transition, err := s.reconcileOne(ctx, id)
		if err != nil {
			if !isPerDocumentFailure(err) {
				return nil, fmt.Errorf("reconciling work order %s: %w", id, err)
			}
			s.logger.Warn("skipping work order after per-document failure",
				zap.String("order_id", id.String()),
				zap.Error(err),
			)
			summary.Skipped++
			continue
		}
		if transition != nil {
			summary.Transitions++
			s.notifyTransition(ctx, id, transition, summary)
		}
	}

	s.logger.Info("work order reconciliation completed", summary.finish(s.clock.Now()).Fields()...)
	return summary, nil
}

func (s *WorkOrderService) reconcileOne(ctx context.Context, id uuid.UUID) (*billing.StatusTransition, error) {
	now := s.clock.Now()
	var transition *billing.StatusTransition

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		transition = wo.Reconcile(now)
		if transition == nil {
			return nil
		}
		return repos.WorkOrderRepo().Save(ctx, wo)
	})
	if err != nil {
		return nil, err
	}
	return transition, nil
}

func (s *WorkOrderService) notifyTransition(ctx context.Context, id uuid.UUID, transition *billing.StatusTransition, summary *RunSummary) {
	sent, err := s.notifier.Notify(ctx, shared.Notification{
		EventType: "billing.work_order.status_changed",
		EntityID:  id,
		Payload: map[string]any{
			"from": transition.From,
			"to":   transition.To,
		},
	})
	if err != nil {
		s.logger.Error("failed to emit work order notification",
			zap.String("order_id", id.String()),
			zap.Error(err),
		)
		return
	}
	if sent {
		summary.Notifications++
	}
}
