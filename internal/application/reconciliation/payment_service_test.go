package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/domain/authz"
	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
)

var financeActor = authz.Subject{UserID: uuid.New(), Roles: []string{"finance"}}

func newPaymentService(repos *memRepos, bus *collectingBus) *PaymentService {
	return NewPaymentService(
		repos.scope(),
		bus,
		nil,
		shared.FixedClock{Instant: invoiceRef},
		zap.NewNop(),
	)
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("full payment settles the invoice immediately", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newPaymentService(repos, bus)

		due := invoiceRef.AddDate(0, 1, 0)
		inv := sentInvoice(t, 1200, 0, &due)
		repos.invoices[inv.ID] = *inv

		transition, err := service.RecordPayment(ctx, financeActor, inv.ID, valueobject.NewMoneyEURFromFloat(1200), billing.PaymentMethodTransfer)
		require.NoError(t, err)
		require.NotNil(t, transition)
		assert.Equal(t, "SENT", transition.From)
		assert.Equal(t, "PAID", transition.To)

		stored := repos.invoices[inv.ID]
		assert.Equal(t, billing.InvoiceStatusPaid, stored.Status)
		require.NotNil(t, stored.PaidAt)
		assert.True(t, stored.AmountPaid.Equal(decimal.NewFromInt(1200)))
		assert.Contains(t, bus.eventTypes(), "InvoicePaid")
	})

	t.Run("partial payment moves a sent invoice to partial", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newPaymentService(repos, bus)

		due := invoiceRef.AddDate(0, 1, 0)
		inv := sentInvoice(t, 1200, 0, &due)
		repos.invoices[inv.ID] = *inv

		transition, err := service.RecordPayment(ctx, financeActor, inv.ID, valueobject.NewMoneyEURFromFloat(400), billing.PaymentMethodCash)
		require.NoError(t, err)
		require.NotNil(t, transition)
		assert.Equal(t, "PARTIAL", transition.To)

		stored := repos.invoices[inv.ID]
		assert.True(t, stored.AmountPaid.Equal(decimal.NewFromInt(400)))
		assert.Nil(t, stored.PaidAt)
	})

	t.Run("overpayment is rejected and nothing is written", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newPaymentService(repos, bus)

		inv := sentInvoice(t, 100, 80, nil)
		repos.invoices[inv.ID] = *inv

		_, err := service.RecordPayment(ctx, financeActor, inv.ID, valueobject.NewMoneyEURFromFloat(50), billing.PaymentMethodTransfer)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)

		stored := repos.invoices[inv.ID]
		assert.True(t, stored.AmountPaid.Equal(decimal.NewFromInt(80)))
		assert.Empty(t, bus.eventTypes())
	})

	t.Run("unknown invoice", func(t *testing.T) {
		repos := newMemRepos()
		service := newPaymentService(repos, &collectingBus{})

		_, err := service.RecordPayment(ctx, financeActor, uuid.New(), valueobject.NewMoneyEURFromFloat(10), billing.PaymentMethodTransfer)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("subjects without the finance role are refused", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newPaymentService(repos, bus)

		inv := sentInvoice(t, 100, 0, nil)
		repos.invoices[inv.ID] = *inv

		intern := authz.Subject{UserID: uuid.New(), Roles: []string{"sales"}}
		_, err := service.RecordPayment(ctx, intern, inv.ID, valueobject.NewMoneyEURFromFloat(100), billing.PaymentMethodCash)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		assert.True(t, repos.invoices[inv.ID].AmountPaid.IsZero())
	})

	t.Run("super admins bypass the role rule", func(t *testing.T) {
		repos := newMemRepos()
		service := newPaymentService(repos, &collectingBus{})

		inv := sentInvoice(t, 100, 0, nil)
		repos.invoices[inv.ID] = *inv

		admin := authz.Subject{UserID: uuid.New(), IsSuperAdmin: true}
		_, err := service.RecordPayment(ctx, admin, inv.ID, valueobject.NewMoneyEURFromFloat(100), billing.PaymentMethodCash)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, repos.invoices[inv.ID].Status)
	})
}

func TestPaymentService_CompensateCreditNote(t *testing.T) {
	ctx := context.Background()

	newValidatedNote := func(t *testing.T, total float64) *billing.CreditNote {
		t.Helper()
		cn, err := billing.NewCreditNote("AV-5001", valueobject.NewMoneyEURFromFloat(total))
		require.NoError(t, err)
		require.NoError(t, cn.Validate())
		return cn
	}

	t.Run("partial compensation shows up as a credit note payment", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newPaymentService(repos, bus)

		due := invoiceRef.AddDate(0, 1, 0)
		inv := sentInvoice(t, 1000, 0, &due)
		repos.invoices[inv.ID] = *inv
		cn := newValidatedNote(t, 300)
		repos.creditNotes[cn.ID] = *cn

		transition, err := service.CompensateCreditNote(ctx, financeActor, cn.ID, inv.ID, valueobject.NewMoneyEURFromFloat(200))
		require.NoError(t, err)
		require.NotNil(t, transition)
		assert.Equal(t, "PARTIAL", transition.To)

		storedInv := repos.invoices[inv.ID]
		require.Len(t, storedInv.PaymentRecords, 1)
		assert.Equal(t, billing.PaymentMethodCreditNote, storedInv.PaymentRecords[0].Method)

		storedNote := repos.creditNotes[cn.ID]
		assert.Equal(t, billing.CreditNoteStatusValidated, storedNote.Status)
		assert.True(t, storedNote.Remaining.Equal(decimal.NewFromInt(100)))
	})

	t.Run("consuming the full note marks it compensated", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newPaymentService(repos, bus)

		inv := sentInvoice(t, 1000, 0, nil)
		repos.invoices[inv.ID] = *inv
		cn := newValidatedNote(t, 300)
		repos.creditNotes[cn.ID] = *cn

		_, err := service.CompensateCreditNote(ctx, financeActor, cn.ID, inv.ID, valueobject.NewMoneyEURFromFloat(300))
		require.NoError(t, err)

		storedNote := repos.creditNotes[cn.ID]
		assert.Equal(t, billing.CreditNoteStatusCompensated, storedNote.Status)
		require.NotNil(t, storedNote.CompensatedAt)
		assert.Contains(t, bus.eventTypes(), "CreditNoteCompensated")
	})

	t.Run("compensation beyond the invoice outstanding is rejected", func(t *testing.T) {
		repos := newMemRepos()
		service := newPaymentService(repos, &collectingBus{})

		inv := sentInvoice(t, 100, 80, nil)
		repos.invoices[inv.ID] = *inv
		cn := newValidatedNote(t, 300)
		repos.creditNotes[cn.ID] = *cn

		_, err := service.CompensateCreditNote(ctx, financeActor, cn.ID, inv.ID, valueobject.NewMoneyEURFromFloat(50))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)

		storedNote := repos.creditNotes[cn.ID]
		assert.True(t, storedNote.Remaining.Equal(decimal.NewFromInt(300)))
	})

	t.Run("draft notes cannot compensate", func(t *testing.T) {
		repos := newMemRepos()
		service := newPaymentService(repos, &collectingBus{})

		inv := sentInvoice(t, 1000, 0, nil)
		repos.invoices[inv.ID] = *inv
		cn, err := billing.NewCreditNote("AV-5002", valueobject.NewMoneyEURFromFloat(300))
		require.NoError(t, err)
		repos.creditNotes[cn.ID] = *cn

		_, err = service.CompensateCreditNote(ctx, financeActor, cn.ID, inv.ID, valueobject.NewMoneyEURFromFloat(100))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

// Guards the shared transition rules: a payment recorded past the due date
// still settles the invoice rather than leaving it overdue.
func TestPaymentService_RecordPayment_PastDue(t *testing.T) {
	repos := newMemRepos()
	bus := &collectingBus{}
	service := newPaymentService(repos, bus)

	due := invoiceRef.Add(-72 * time.Hour)
	inv := sentInvoice(t, 500, 0, &due)
	repos.invoices[inv.ID] = *inv

	transition, err := service.RecordPayment(context.Background(), financeActor, inv.ID, valueobject.NewMoneyEURFromFloat(500), billing.PaymentMethodTransfer)
	require.NoError(t, err)
	require.NotNil(t, transition)
	assert.Equal(t, "PAID", transition.To)
	assert.Equal(t, billing.InvoiceStatusPaid, repos.invoices[inv.ID].Status)
}
