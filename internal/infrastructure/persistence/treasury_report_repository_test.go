package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/finoffice/backend/internal/domain/treasury"
)

var (
	reportPeriodStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reportPeriodEnd   = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func seedReportInvoice(t *testing.T, repo *GormInvoiceRepository, number string, total float64, status billing.InvoiceStatus, createdAt time.Time) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(number, uuid.New(), "Acme SARL", valueobject.NewMoneyEURFromFloat(total), nil)
	require.NoError(t, err)
	inv.Status = status
	inv.CreatedAt = createdAt
	require.NoError(t, repo.Save(context.Background(), inv))
	return inv
}

func TestGormTreasuryReportRepository_InvoiceTotals(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewGormInvoiceRepository(db.DB)
	repo := NewGormTreasuryReportRepository(db.DB)
	ctx := context.Background()

	// issued during the period
	seedReportInvoice(t, invoices, "INV-2001", 1000, billing.InvoiceStatusSent, reportPeriodStart.AddDate(0, 0, 3))

	// cancelled invoices never count as issued
	seedReportInvoice(t, invoices, "INV-2002", 400, billing.InvoiceStatusCancelled, reportPeriodStart.AddDate(0, 0, 4))

	// issued in February, paid during the period
	paid := seedReportInvoice(t, invoices, "INV-2003", 500, billing.InvoiceStatusPaid, reportPeriodStart.AddDate(0, -1, 0))
	paidAt := reportPeriodStart.AddDate(0, 0, 10)
	paid.PaidAt = &paidAt
	paid.AmountPaid = decimal.NewFromInt(500)
	require.NoError(t, invoices.Save(ctx, paid))

	// overdue receivable from a prior period, partially settled
	overdue := seedReportInvoice(t, invoices, "INV-2004", 800, billing.InvoiceStatusOverdue, reportPeriodStart.AddDate(0, -2, 0))
	overdue.AmountPaid = decimal.NewFromInt(300)
	require.NoError(t, invoices.Save(ctx, overdue))

	totals, err := repo.InvoiceTotals(ctx, reportPeriodStart, reportPeriodEnd)
	require.NoError(t, err)

	assert.Equal(t, 1, totals.IssuedCount)
	assert.True(t, totals.IssuedTotal.Equal(decimal.NewFromInt(1000)), "issued total %s", totals.IssuedTotal)
	assert.Equal(t, 1, totals.PaidCount)
	assert.True(t, totals.PaidTotal.Equal(decimal.NewFromInt(500)), "paid total %s", totals.PaidTotal)
	assert.True(t, totals.OutstandingReceivables.Equal(decimal.NewFromInt(500)), "outstanding %s", totals.OutstandingReceivables)
}

func TestGormTreasuryReportRepository_InvoiceTotals_EmptyPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTreasuryReportRepository(db.DB)

	totals, err := repo.InvoiceTotals(context.Background(), reportPeriodStart, reportPeriodEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.IssuedCount)
	assert.True(t, totals.IssuedTotal.IsZero())
	assert.True(t, totals.PaidTotal.IsZero())
	assert.True(t, totals.OutstandingReceivables.IsZero())
}

func TestGormTreasuryReportRepository_AccountFlows(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewGormBankAccountRepository(db.DB)
	transactions := NewGormTransactionRepository(db.DB)
	repo := NewGormTreasuryReportRepository(db.DB)
	ctx := context.Background()

	courant, err := treasury.NewBankAccount("Compte courant", "FR7630001007941234567890185", valueobject.NewMoneyEURFromFloat(100000))
	require.NoError(t, err)
	require.NoError(t, accounts.Save(ctx, courant))

	livret, err := treasury.NewBankAccount("Livret", "FR7630004000031234567890143", valueobject.NewMoneyEURFromFloat(50000))
	require.NoError(t, err)
	require.NoError(t, accounts.Save(ctx, livret))

	seedTx := func(accountID uuid.UUID, date time.Time, label string, credit, debit int64) {
		tx, err := treasury.NewTransaction(accountID, date, label, decimal.NewFromInt(credit), decimal.NewFromInt(debit))
		require.NoError(t, err)
		require.NoError(t, transactions.Save(ctx, &tx))
	}

	seedTx(courant.ID, reportPeriodStart.AddDate(0, 0, 2), "Virement client", 200000, 0)
	seedTx(courant.ID, reportPeriodStart.AddDate(0, 0, 6), "Loyer", 0, 50000)
	seedTx(livret.ID, reportPeriodStart.AddDate(0, 0, 6), "Epargne", 10000, 0)
	// outside the period
	seedTx(courant.ID, reportPeriodEnd.AddDate(0, 0, 1), "Virement avril", 99999, 0)

	flows, err := repo.AccountFlows(ctx, reportPeriodStart, reportPeriodEnd)
	require.NoError(t, err)
	require.Len(t, flows, 2)

	// ordered by account name
	assert.Equal(t, courant.ID, flows[0].AccountID)
	assert.Equal(t, "Compte courant", flows[0].AccountName)
	assert.True(t, flows[0].Credits.Equal(decimal.NewFromInt(200000)))
	assert.True(t, flows[0].Debits.Equal(decimal.NewFromInt(50000)))

	assert.Equal(t, "Livret", flows[1].AccountName)
	assert.True(t, flows[1].Credits.Equal(decimal.NewFromInt(10000)))
	assert.True(t, flows[1].Debits.IsZero())
}

func TestGormTreasuryReportRepository_CashTotals(t *testing.T) {
	db := setupTestDB(t)
	movements := NewGormCashMovementRepository(db.DB)
	repo := NewGormTreasuryReportRepository(db.DB)
	ctx := context.Background()

	registerID := uuid.New()
	seedMovement := func(date time.Time, label string, kind treasury.MovementType, amount int64, cancelled bool) {
		mv, err := treasury.NewCashMovement(registerID, date, label, kind, decimal.NewFromInt(amount))
		require.NoError(t, err)
		mv.IsCancelled = cancelled
		require.NoError(t, movements.Save(ctx, &mv))
	}

	seedMovement(reportPeriodStart.AddDate(0, 0, 1), "Encaissement", treasury.MovementTypeInflow, 300, false)
	seedMovement(reportPeriodStart.AddDate(0, 0, 2), "Achat fournitures", treasury.MovementTypeOutflow, 120, false)
	seedMovement(reportPeriodStart.AddDate(0, 0, 3), "Erreur de saisie", treasury.MovementTypeInflow, 900, true)
	seedMovement(reportPeriodEnd.AddDate(0, 0, 1), "Encaissement avril", treasury.MovementTypeInflow, 777, false)

	totals, err := repo.CashTotals(ctx, reportPeriodStart, reportPeriodEnd)
	require.NoError(t, err)
	assert.True(t, totals.Inflows.Equal(decimal.NewFromInt(300)), "inflows %s", totals.Inflows)
	assert.True(t, totals.Outflows.Equal(decimal.NewFromInt(120)), "outflows %s", totals.Outflows)
}
