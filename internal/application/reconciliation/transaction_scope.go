package reconciliation

import (
	"context"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/credit"
	"github.com/finoffice/backend/internal/domain/treasury"
)

// TransactionScope wraps one document's read-modify-write in a database
// transaction with row locking, so an interactive payment recording and a
// reconciliation pass cannot silently overwrite each other. Each document in
// a batch gets its own scope: an interrupted batch leaves the already
// committed transitions standing.
type TransactionScope interface {
	// Execute runs fn inside a transaction; repositories obtained from repos
	// share that transaction and lock the rows they load for update.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides transaction-scoped repository access
type TransactionalRepositories interface {
	InvoiceRepo() billing.InvoiceRepository
	QuoteRepo() billing.QuoteRepository
	WorkOrderRepo() billing.WorkOrderRepository
	CreditNoteRepo() billing.CreditNoteRepository
	CreditRepo() credit.Repository
	BankAccountRepo() treasury.BankAccountRepository
	CashRegisterRepo() treasury.CashRegisterRepository
	TransactionRepo() treasury.TransactionRepository
	CashMovementRepo() treasury.CashMovementRepository
	BalanceAdjustmentRepo() treasury.BalanceAdjustmentRepository
}

// NoOpTransactionScope runs the function without a real transaction. It
// backs the service tests, which exercise batch logic over in-memory repos.
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// Execute runs fn directly against the configured repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}
