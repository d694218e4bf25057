package treasury

import (
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType distinguishes cash inflows from outflows
type MovementType string

const (
	MovementTypeInflow  MovementType = "INFLOW"
	MovementTypeOutflow MovementType = "OUTFLOW"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementTypeInflow || t == MovementTypeOutflow
}

// CashRegister is the aggregate root for a cash register (caisse) with its
// own movement ledger, verified the same way as a bank account.
type CashRegister struct {
	shared.BaseAggregateRoot
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Balance        decimal.Decimal `json:"balance"`
}

// NewCashRegister creates a cash register with its opening balance
func NewCashRegister(name string, initialBalance valueobject.Money) (*CashRegister, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Register name cannot be empty")
	}
	return &CashRegister{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		InitialBalance:    initialBalance.Amount(),
		Balance:           initialBalance.Amount(),
	}, nil
}

// ApplyRecompute overwrites the stored balance with the replayed one and, when
// the drift exceeded tolerance, raises a drift-detected event.
func (r *CashRegister) ApplyRecompute(result RecomputeResult, now time.Time) {
	r.Balance = result.NewBalance
	r.UpdatedAt = now
	r.IncrementVersion()
	if result.DriftDetected {
		r.AddDomainEvent(NewBalanceDriftDetectedEvent(AccountKindCash, r.ID, r.Name, result))
	}
}

// CashMovement is a cash ledger entry owned by its register. Cancelled
// movements are kept for audit but excluded from balance computation.
type CashMovement struct {
	ID          uuid.UUID       `json:"id"`
	RegisterID  uuid.UUID       `json:"register_id"`
	Date        time.Time       `json:"date"`
	Label       string          `json:"label"`
	Type        MovementType    `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	IsCancelled bool            `json:"is_cancelled"`
}

// NewCashMovement records a cash ledger entry
func NewCashMovement(registerID uuid.UUID, date time.Time, label string, movType MovementType, amount decimal.Decimal) (CashMovement, error) {
	if registerID == uuid.Nil {
		return CashMovement{}, shared.NewDomainError("INVALID_INPUT", "Register ID cannot be empty")
	}
	if !movType.IsValid() {
		return CashMovement{}, shared.NewDomainError("INVALID_INPUT", "Movement type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return CashMovement{}, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	return CashMovement{
		ID:         uuid.New(),
		RegisterID: registerID,
		Date:       date,
		Label:      label,
		Type:       movType,
		Amount:     amount,
	}, nil
}

// LedgerEntry reduces the movement to the recalculator's input shape.
// Inflows count as credits, outflows as debits.
func (m CashMovement) LedgerEntry() LedgerEntry {
	entry := LedgerEntry{Cancelled: m.IsCancelled}
	if m.Type == MovementTypeInflow {
		entry.Credit = m.Amount
	} else {
		entry.Debit = m.Amount
	}
	return entry
}

// Money helpers

// BalanceMoney returns the stored balance as Money
func (r *CashRegister) BalanceMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(r.Balance)
}

// BalanceMoney returns the stored balance as Money
func (a *BankAccount) BalanceMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(a.Balance)
}
