package treasury

import (
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is the aggregate root for a bank account (banque). It owns its
// transaction ledger; the stored balance is a projection of that ledger and
// is periodically verified against it.
type BankAccount struct {
	shared.BaseAggregateRoot
	Name           string          `json:"name"`
	IBAN           string          `json:"iban"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Balance        decimal.Decimal `json:"balance"`
}

// NewBankAccount creates a bank account with its opening balance
func NewBankAccount(name, iban string, initialBalance valueobject.Money) (*BankAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name cannot be empty")
	}
	return &BankAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IBAN:              iban,
		InitialBalance:    initialBalance.Amount(),
		Balance:           initialBalance.Amount(),
	}, nil
}

// ApplyRecompute overwrites the stored balance with the replayed one and, when
// the drift exceeded tolerance, raises a drift-detected event.
func (a *BankAccount) ApplyRecompute(result RecomputeResult, now time.Time) {
	a.Balance = result.NewBalance
	a.UpdatedAt = now
	a.IncrementVersion()
	if result.DriftDetected {
		a.AddDomainEvent(NewBalanceDriftDetectedEvent(AccountKindBank, a.ID, a.Name, result))
	}
}

// Transaction is a bank ledger entry owned by its account. Exactly one of
// credit/debit is non-zero; entries are immutable once recorded.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Date      time.Time       `json:"date"`
	Label     string          `json:"label"`
	Credit    decimal.Decimal `json:"credit"`
	Debit     decimal.Decimal `json:"debit"`
}

// NewTransaction records a bank ledger entry. Credit and debit are mutually
// exclusive and the non-zero side must be positive.
func NewTransaction(accountID uuid.UUID, date time.Time, label string, creditAmt, debitAmt decimal.Decimal) (Transaction, error) {
	if accountID == uuid.Nil {
		return Transaction{}, shared.NewDomainError("INVALID_INPUT", "Account ID cannot be empty")
	}
	creditSet := creditAmt.IsPositive()
	debitSet := debitAmt.IsPositive()
	if creditSet == debitSet {
		return Transaction{}, shared.NewDomainError("INVALID_AMOUNT", "Exactly one of credit or debit must be positive")
	}
	if creditAmt.IsNegative() || debitAmt.IsNegative() {
		return Transaction{}, shared.NewDomainError("INVALID_AMOUNT", "Transaction amounts cannot be negative")
	}
	return Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Date:      date,
		Label:     label,
		Credit:    creditAmt,
		Debit:     debitAmt,
	}, nil
}

// LedgerEntry reduces the transaction to the recalculator's input shape
func (t Transaction) LedgerEntry() LedgerEntry {
	return LedgerEntry{Credit: t.Credit, Debit: t.Debit}
}
