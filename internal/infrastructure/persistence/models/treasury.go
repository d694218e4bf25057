package models

import (
	"time"

	"github.com/finoffice/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for the BankAccount aggregate root.
type BankAccountModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	IBAN           string          `gorm:"type:varchar(34)"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount entity.
func (m *BankAccountModel) ToDomain() *treasury.BankAccount {
	return &treasury.BankAccount{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		IBAN:              m.IBAN,
		InitialBalance:    m.InitialBalance,
		Balance:           m.Balance,
	}
}

// FromDomain populates the persistence model from a domain BankAccount entity.
func (m *BankAccountModel) FromDomain(a *treasury.BankAccount) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.IBAN = a.IBAN
	m.InitialBalance = a.InitialBalance
	m.Balance = a.Balance
}

// TransactionModel is the persistence model for an immutable bank ledger entry.
type TransactionModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date      time.Time       `gorm:"not null;index"`
	Label     string          `gorm:"type:varchar(500)"`
	Credit    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Debit     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() treasury.Transaction {
	return treasury.Transaction{
		ID:        m.ID,
		AccountID: m.AccountID,
		Date:      m.Date,
		Label:     m.Label,
		Credit:    m.Credit,
		Debit:     m.Debit,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t treasury.Transaction) {
	m.ID = t.ID
	m.AccountID = t.AccountID
	m.Date = t.Date
	m.Label = t.Label
	m.Credit = t.Credit
	m.Debit = t.Debit
}

// CashRegisterModel is the persistence model for the CashRegister aggregate root.
type CashRegisterModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CashRegisterModel) TableName() string {
	return "cash_registers"
}

// ToDomain converts the persistence model to a domain CashRegister entity.
func (m *CashRegisterModel) ToDomain() *treasury.CashRegister {
	return &treasury.CashRegister{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		InitialBalance:    m.InitialBalance,
		Balance:           m.Balance,
	}
}

// FromDomain populates the persistence model from a domain CashRegister entity.
func (m *CashRegisterModel) FromDomain(r *treasury.CashRegister) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.InitialBalance = r.InitialBalance
	m.Balance = r.Balance
}

// CashMovementModel is the persistence model for one cash ledger entry.
// Cancelled movements stay in the table for audit.
type CashMovementModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key"`
	RegisterID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Date        time.Time             `gorm:"not null;index"`
	Label       string                `gorm:"type:varchar(500)"`
	Type        treasury.MovementType `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	IsCancelled bool                  `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain CashMovement.
func (m *CashMovementModel) ToDomain() treasury.CashMovement {
	return treasury.CashMovement{
		ID:          m.ID,
		RegisterID:  m.RegisterID,
		Date:        m.Date,
		Label:       m.Label,
		Type:        m.Type,
		Amount:      m.Amount,
		IsCancelled: m.IsCancelled,
	}
}

// FromDomain populates the persistence model from a domain CashMovement.
func (m *CashMovementModel) FromDomain(mv treasury.CashMovement) {
	m.ID = mv.ID
	m.RegisterID = mv.RegisterID
	m.Date = mv.Date
	m.Label = mv.Label
	m.Type = mv.Type
	m.Amount = mv.Amount
	m.IsCancelled = mv.IsCancelled
}

// BalanceAdjustmentModel is the persistence model for the drift audit trail.
type BalanceAdjustmentModel struct {
	BaseModel
	AccountKind treasury.AccountKind `gorm:"type:varchar(10);not null;index"`
	AccountID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	AccountName string               `gorm:"type:varchar(200);not null"`
	OldBalance  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	NewBalance  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Drift       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	RecordedAt  time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (BalanceAdjustmentModel) TableName() string {
	return "balance_adjustments"
}

// ToDomain converts the persistence model to a domain BalanceAdjustment.
func (m *BalanceAdjustmentModel) ToDomain() *treasury.BalanceAdjustment {
	return &treasury.BalanceAdjustment{
		BaseEntity:  m.BaseModel.ToDomain(),
		AccountKind: m.AccountKind,
		AccountID:   m.AccountID,
		AccountName: m.AccountName,
		OldBalance:  m.OldBalance,
		NewBalance:  m.NewBalance,
		Drift:       m.Drift,
		RecordedAt:  m.RecordedAt,
	}
}

// FromDomain populates the persistence model from a domain BalanceAdjustment.
func (m *BalanceAdjustmentModel) FromDomain(adj *treasury.BalanceAdjustment) {
	m.FromDomainBaseEntity(adj.BaseEntity)
	m.AccountKind = adj.AccountKind
	m.AccountID = adj.AccountID
	m.AccountName = adj.AccountName
	m.OldBalance = adj.OldBalance
	m.NewBalance = adj.NewBalance
	m.Drift = adj.Drift
	m.RecordedAt = adj.RecordedAt
}
