package treasury

import (
	"context"

	"github.com/google/uuid"

	"github.com/finoffice/backend/internal/domain/shared"
)

// BankAccountRepository provides persistence for bank accounts
type BankAccountRepository interface {
	shared.Repository[BankAccount]
	// FindAll returns every account ordered by id
	FindAll(ctx context.Context) ([]BankAccount, error)
}

// TransactionRepository provides read access to the bank ledger. Entries are
// written by the interactive CRUD layer; the engine only replays them.
type TransactionRepository interface {
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Transaction, error)
	Save(ctx context.Context, t *Transaction) error
}

// CashRegisterRepository provides persistence for cash registers
type CashRegisterRepository interface {
	shared.Repository[CashRegister]
	FindAll(ctx context.Context) ([]CashRegister, error)
}

// CashMovementRepository provides read access to the cash ledger
type CashMovementRepository interface {
	FindByRegister(ctx context.Context, registerID uuid.UUID) ([]CashMovement, error)
	Save(ctx context.Context, m *CashMovement) error
}

// BalanceAdjustmentRepository stores the drift audit trail (append-only)
type BalanceAdjustmentRepository interface {
	Save(ctx context.Context, adj *BalanceAdjustment) error
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]BalanceAdjustment, error)
}
