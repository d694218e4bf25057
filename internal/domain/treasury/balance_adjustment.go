package treasury

import (
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountKind distinguishes the two ledger-bearing account types
type AccountKind string

const (
	AccountKindBank AccountKind = "BANK"
	AccountKindCash AccountKind = "CASH"
)

// BalanceAdjustment is the audit-trail record written whenever a balance
// recompute corrects a stored balance. Adjustments are append-only.
type BalanceAdjustment struct {
	shared.BaseEntity
	AccountKind AccountKind     `json:"account_kind"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	OldBalance  decimal.Decimal `json:"old_balance"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	Drift       decimal.Decimal `json:"drift"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// NewBalanceAdjustment creates an audit record for a corrected drift
func NewBalanceAdjustment(kind AccountKind, accountID uuid.UUID, accountName string, result RecomputeResult, at time.Time) *BalanceAdjustment {
	return &BalanceAdjustment{
		BaseEntity:  shared.NewBaseEntity(),
		AccountKind: kind,
		AccountID:   accountID,
		AccountName: accountName,
		OldBalance:  result.OldBalance,
		NewBalance:  result.NewBalance,
		Drift:       result.Drift,
		RecordedAt:  at,
	}
}
