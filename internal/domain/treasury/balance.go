package treasury

import (
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the recalculator's view of one ledger line, whatever its
// source (bank transaction or cash movement).
type LedgerEntry struct {
	Credit    decimal.Decimal
	Debit     decimal.Decimal
	Cancelled bool
}

// RecomputeResult is the outcome of replaying an account's ledger
type RecomputeResult struct {
	OldBalance    decimal.Decimal
	NewBalance    decimal.Decimal
	Drift         decimal.Decimal // new - old
	DriftDetected bool            // |drift| exceeded the monetary tolerance
}

// BalanceRecalculator derives an account balance from its full ledger
// history. The computation is a plain sum, so it is order-independent and
// idempotent: identical ledger state always yields an identical balance.
type BalanceRecalculator struct{}

// NewBalanceRecalculator creates a recalculator
func NewBalanceRecalculator() *BalanceRecalculator {
	return &BalanceRecalculator{}
}

// Recompute replays the ledger over the initial balance and compares the
// result with the stored balance. Cancelled entries are skipped. A drift is
// flagged, not fatal: the caller overwrites the stored balance and reports.
func (r *BalanceRecalculator) Recompute(initialBalance, storedBalance decimal.Decimal, entries []LedgerEntry) RecomputeResult {
	newBalance := initialBalance
	for _, e := range entries {
		if e.Cancelled {
			continue
		}
		newBalance = newBalance.Add(e.Credit).Sub(e.Debit)
	}

	drift := newBalance.Sub(storedBalance)
	return RecomputeResult{
		OldBalance:    storedBalance,
		NewBalance:    newBalance,
		Drift:         drift,
		DriftDetected: drift.Abs().GreaterThan(valueobject.Tolerance),
	}
}
