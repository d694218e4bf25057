package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LowBalanceService flags treasury accounts whose stored balance has fallen
// below a configured floor. It is a pure read: no account state is modified,
// only events and notifications are emitted. Dedup is per (account, day).
type LowBalanceService struct {
	scope    TransactionScope
	eventBus shared.EventPublisher
	notifier *Notifier
	clock    shared.Clock
	logger   *zap.Logger
}

// NewLowBalanceService creates a new LowBalanceService
func NewLowBalanceService(
	scope TransactionScope,
	eventBus shared.EventPublisher,
	notifier *Notifier,
	clock shared.Clock,
	logger *zap.Logger,
) *LowBalanceService {
	return &LowBalanceService{
		scope:    scope,
		eventBus: eventBus,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// lowBalanceKey is the per-(account, day) dedup key for low-balance notices
func lowBalanceKey(kind treasury.AccountKind, id uuid.UUID, day time.Time) string {
	return fmt.Sprintf("treasury.%s:%s:low-balance:%s", kind, id, day.Format("2006-01-02"))
}

// Classify walks every bank account and cash register and notifies about each
// one below its threshold. Re-running the same day does not re-notify.
func (s *LowBalanceService) Classify(ctx context.Context, bankThreshold, cashThreshold decimal.Decimal) (*RunSummary, error) {
	now := s.clock.Now()
	summary := newRunSummary("classify-low-balances", now)

	var accounts []treasury.BankAccount
	var registers []treasury.CashRegister
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if accounts, err = repos.BankAccountRepo().FindAll(ctx); err != nil {
			return err
		}
		registers, err = repos.CashRegisterRepo().FindAll(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("listing treasury accounts: %w", err)
	}

	for i := range accounts {
		a := &accounts[i]
		summary.Processed++
		if a.Balance.GreaterThanOrEqual(bankThreshold) {
			continue
		}
		s.flag(ctx, treasury.AccountKindBank, a.ID, a.Name, a.Balance, bankThreshold, summary)
	}
	for i := range registers {
		r := &registers[i]
		summary.Processed++
		if r.Balance.GreaterThanOrEqual(cashThreshold) {
			continue
		}
		s.flag(ctx, treasury.AccountKindCash, r.ID, r.Name, r.Balance, cashThreshold, summary)
	}

	s.logger.Info("low balance classification completed", summary.finish(s.clock.Now()).Fields()...)
	return summary, nil
}

func (s *LowBalanceService) flag(
	ctx context.Context,
	kind treasury.AccountKind,
	id uuid.UUID,
	name string,
	balance, threshold decimal.Decimal,
	summary *RunSummary,
) {
	now := s.clock.Now()

	event := treasury.NewLowBalanceDetectedEvent(kind, id, name, balance, threshold)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish low balance event", zap.Error(err))
	}

	sent, err := s.notifier.Notify(ctx, shared.Notification{
		EventType: "treasury.balance.low",
		EntityID:  id,
		DedupKey:  lowBalanceKey(kind, id, now),
		Payload: map[string]any{
			"account_kind": string(kind),
			"account_name": name,
			"balance":      balance.String(),
			"threshold":    threshold.String(),
		},
	})
	if err != nil {
		s.logger.Error("failed to emit low balance notification",
			zap.String("account_id", id.String()), zap.Error(err))
		return
	}
	if sent {
		summary.Notifications++
	}
}
