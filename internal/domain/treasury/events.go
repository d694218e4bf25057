package treasury

import (
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceDriftDetectedEvent is raised when a replayed balance differs from
// the stored one beyond tolerance. The stored balance has already been
// corrected when this event is published.
type BalanceDriftDetectedEvent struct {
	shared.BaseDomainEvent
	AccountKind AccountKind     `json:"account_kind"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	OldBalance  decimal.Decimal `json:"old_balance"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	Drift       decimal.Decimal `json:"drift"`
}

// EventType returns the event type name
func (e *BalanceDriftDetectedEvent) EventType() string {
	return "BalanceDriftDetected"
}

// NewBalanceDriftDetectedEvent creates a new BalanceDriftDetectedEvent
func NewBalanceDriftDetectedEvent(kind AccountKind, accountID uuid.UUID, accountName string, result RecomputeResult) *BalanceDriftDetectedEvent {
	aggType := "BankAccount"
	if kind == AccountKindCash {
		aggType = "CashRegister"
	}
	return &BalanceDriftDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BalanceDriftDetected", aggType, accountID),
		AccountKind:     kind,
		AccountID:       accountID,
		AccountName:     accountName,
		OldBalance:      result.OldBalance,
		NewBalance:      result.NewBalance,
		Drift:           result.Drift,
	}
}

// LowBalanceDetectedEvent is raised when an account balance falls below the
// configured warning threshold
type LowBalanceDetectedEvent struct {
	shared.BaseDomainEvent
	AccountKind AccountKind     `json:"account_kind"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
	Threshold   decimal.Decimal `json:"threshold"`
}

// EventType returns the event type name
func (e *LowBalanceDetectedEvent) EventType() string {
	return "LowBalanceDetected"
}

// NewLowBalanceDetectedEvent creates a new LowBalanceDetectedEvent
func NewLowBalanceDetectedEvent(kind AccountKind, accountID uuid.UUID, accountName string, balance, threshold decimal.Decimal) *LowBalanceDetectedEvent {
	aggType := "BankAccount"
	if kind == AccountKindCash {
		aggType = "CashRegister"
	}
	return &LowBalanceDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LowBalanceDetected", aggType, accountID),
		AccountKind:     kind,
		AccountID:       accountID,
		AccountName:     accountName,
		Balance:         balance,
		Threshold:       threshold,
	}
}
