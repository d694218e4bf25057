package reconciliation

import (
	"context"
	"fmt"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceService replays the ledgers of every bank account and cash register
// and reconciles the stored balances against the replayed ones. Drift beyond
// tolerance is corrected, recorded in the adjustment audit trail and notified.
type BalanceService struct {
	scope        TransactionScope
	recalculator *treasury.BalanceRecalculator
	eventBus     shared.EventPublisher
	notifier     *Notifier
	clock        shared.Clock
	logger       *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	scope TransactionScope,
	recalculator *treasury.BalanceRecalculator,
	eventBus shared.EventPublisher,
	notifier *Notifier,
	clock shared.Clock,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		scope:        scope,
		recalculator: recalculator,
		eventBus:     eventBus,
		notifier:     notifier,
		clock:        clock,
		logger:       logger,
	}
}

// RecomputeAll reconciles every bank account and cash register. Each account
// is handled in its own transaction; a failure on one account skips it and
// continues with the rest.
func (s *BalanceService) RecomputeAll(ctx context.Context) (*RunSummary, error) {
	summary := newRunSummary("recompute-balances", s.clock.Now())

	var bankIDs, registerIDs []uuid.UUID
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		accounts, err := repos.BankAccountRepo().FindAll(ctx)
		if err != nil {
			return err
		}
		for i := range accounts {
			bankIDs = append(bankIDs, accounts[i].ID)
		}
		registers, err := repos.CashRegisterRepo().FindAll(ctx)
		if err != nil {
			return err
		}
		for i := range registers {
			registerIDs = append(registerIDs, registers[i].ID)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("listing treasury accounts: %w", err)
	}

	for _, id := range bankIDs {
		summary.Processed++
		result, err := s.RecomputeBankAccount(ctx, id)
		if err != nil {
			if !isPerDocumentFailure(err) {
				return nil, fmt.Errorf("recomputing bank account %s: %w", id, err)
			}
			s.logger.Warn("skipping bank account after per-document failure",
				zap.String("account_id", id.String()), zap.Error(err))
			summary.Skipped++
			continue
		}
		if result.DriftDetected {
			summary.Transitions++
			summary.Notifications++
		}
	}
	for _, id := range registerIDs {
		summary.Processed++
		result, err := s.RecomputeCashRegister(ctx, id)
		if err != nil {
			if !isPerDocumentFailure(err) {
				return nil, fmt.Errorf("recomputing cash register %s: %w", id, err)
			}
			s.logger.Warn("skipping cash register after per-document failure",
				zap.String("register_id", id.String()), zap.Error(err))
			summary.Skipped++
			continue
		}
		if result.DriftDetected {
			summary.Transitions++
			summary.Notifications++
		}
	}

	s.logger.Info("balance recompute completed", summary.finish(s.clock.Now()).Fields()...)
	return summary, nil
}

// RecomputeBankAccount replays one bank account's transaction ledger and
// corrects the stored balance when it drifted beyond tolerance.
func (s *BalanceService) RecomputeBankAccount(ctx context.Context, accountID uuid.UUID) (*treasury.RecomputeResult, error) {
	now := s.clock.Now()
	var result treasury.RecomputeResult
	var name string
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, err := repos.BankAccountRepo().FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		transactions, err := repos.TransactionRepo().FindByAccount(ctx, accountID)
		if err != nil {
			return err
		}

		entries := make([]treasury.LedgerEntry, 0, len(transactions))
		for _, t := range transactions {
			entries = append(entries, t.LedgerEntry())
		}
		result = s.recalculator.Recompute(account.InitialBalance, account.Balance, entries)
		if !result.DriftDetected {
			return nil
		}

		account.ApplyRecompute(result, now)
		if err := repos.BankAccountRepo().Save(ctx, account); err != nil {
			return err
		}
		adj := treasury.NewBalanceAdjustment(treasury.AccountKindBank, account.ID, account.Name, result, now)
		if err := repos.BalanceAdjustmentRepo().Save(ctx, adj); err != nil {
			return err
		}

		name = account.Name
		events = account.GetDomainEvents()
		account.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.DriftDetected {
		s.afterDriftCorrection(ctx, treasury.AccountKindBank, accountID, name, result, events)
	}
	return &result, nil
}

// RecomputeCashRegister replays one cash register's movement ledger and
// corrects the stored balance when it drifted beyond tolerance. Cancelled
// movements stay in the ledger but are excluded from the replay.
func (s *BalanceService) RecomputeCashRegister(ctx context.Context, registerID uuid.UUID) (*treasury.RecomputeResult, error) {
	now := s.clock.Now()
	var result treasury.RecomputeResult
	var name string
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		register, err := repos.CashRegisterRepo().FindByID(ctx, registerID)
		if err != nil {
			return err
		}
		movements, err := repos.CashMovementRepo().FindByRegister(ctx, registerID)
		if err != nil {
			return err
		}

		entries := make([]treasury.LedgerEntry, 0, len(movements))
		for _, m := range movements {
			entries = append(entries, m.LedgerEntry())
		}
		result = s.recalculator.Recompute(register.InitialBalance, register.Balance, entries)
		if !result.DriftDetected {
			return nil
		}

		register.ApplyRecompute(result, now)
		if err := repos.CashRegisterRepo().Save(ctx, register); err != nil {
			return err
		}
		adj := treasury.NewBalanceAdjustment(treasury.AccountKindCash, register.ID, register.Name, result, now)
		if err := repos.BalanceAdjustmentRepo().Save(ctx, adj); err != nil {
			return err
		}

		name = register.Name
		events = register.GetDomainEvents()
		register.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.DriftDetected {
		s.afterDriftCorrection(ctx, treasury.AccountKindCash, registerID, name, result, events)
	}
	return &result, nil
}

func (s *BalanceService) afterDriftCorrection(
	ctx context.Context,
	kind treasury.AccountKind,
	accountID uuid.UUID,
	name string,
	result treasury.RecomputeResult,
	events []shared.DomainEvent,
) {
	if len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish drift events", zap.Error(err))
		}
	}

	if _, err := s.notifier.Notify(ctx, shared.Notification{
		EventType: "treasury.balance.drift_corrected",
		EntityID:  accountID,
		Payload: map[string]any{
			"account_kind": string(kind),
			"account_name": name,
			"old_balance":  result.OldBalance.String(),
			"new_balance":  result.NewBalance.String(),
			"drift":        result.Drift.String(),
		},
	}); err != nil {
		s.logger.Error("failed to emit drift notification",
			zap.String("account_id", accountID.String()), zap.Error(err))
	}

	s.logger.Warn("balance drift corrected",
		zap.String("account_kind", string(kind)),
		zap.String("account_id", accountID.String()),
		zap.String("account_name", name),
		zap.String("old_balance", result.OldBalance.String()),
		zap.String("new_balance", result.NewBalance.String()),
		zap.String("drift", result.Drift.String()),
	)
}
