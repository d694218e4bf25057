package persistence

import (
	"context"

	apprec "github.com/finoffice/backend/internal/application/reconciliation"
	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/credit"
	"github.com/finoffice/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope using GORM
// transactions. Repositories handed to the callback share one transaction,
// and their FindByID calls take row locks inside it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apprec.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// QuoteRepo returns the quote repository scoped to the current transaction
func (r *gormTransactionalRepositories) QuoteRepo() billing.QuoteRepository {
	return NewGormQuoteRepository(r.tx)
}

// WorkOrderRepo returns the work order repository scoped to the current transaction
func (r *gormTransactionalRepositories) WorkOrderRepo() billing.WorkOrderRepository {
	return NewGormWorkOrderRepository(r.tx)
}

// CreditNoteRepo returns the credit note repository scoped to the current transaction
func (r *gormTransactionalRepositories) CreditNoteRepo() billing.CreditNoteRepository {
	return NewGormCreditNoteRepository(r.tx)
}

// CreditRepo returns the credit repository scoped to the current transaction
func (r *gormTransactionalRepositories) CreditRepo() credit.Repository {
	return NewGormCreditRepository(r.tx)
}

// BankAccountRepo returns the bank account repository scoped to the current transaction
func (r *gormTransactionalRepositories) BankAccountRepo() treasury.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

// CashRegisterRepo returns the cash register repository scoped to the current transaction
func (r *gormTransactionalRepositories) CashRegisterRepo() treasury.CashRegisterRepository {
	return NewGormCashRegisterRepository(r.tx)
}

// TransactionRepo returns the bank ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) TransactionRepo() treasury.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// CashMovementRepo returns the cash ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) CashMovementRepo() treasury.CashMovementRepository {
	return NewGormCashMovementRepository(r.tx)
}

// BalanceAdjustmentRepo returns the adjustment audit repository scoped to the current transaction
func (r *gormTransactionalRepositories) BalanceAdjustmentRepo() treasury.BalanceAdjustmentRepository {
	return NewGormBalanceAdjustmentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apprec.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apprec.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
