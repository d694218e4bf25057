package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoffice/backend/internal/domain/credit"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
)

func storedCredit(t *testing.T, repo *GormCreditRepository, number string, n int, firstDue time.Time) *credit.Credit {
	t.Helper()
	installments := make([]credit.Installment, 0, n)
	for i := 0; i < n; i++ {
		inst, err := credit.NewInstallment(uuid.Nil, i+1, firstDue.AddDate(0, i, 0),
			decimal.NewFromInt(100), decimal.NewFromInt(10))
		require.NoError(t, err)
		installments = append(installments, inst)
	}
	c, err := credit.NewCredit(number, valueobject.NewMoneyEURFromFloat(float64(n*100)), n, installments)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestGormCreditRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCreditRepository(db.DB)
	ctx := context.Background()

	firstDue := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	c := storedCredit(t, repo, "CR-4001", 3, firstDue)

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "CR-4001", loaded.CreditNumber)
	assert.Equal(t, credit.StatusActive, loaded.Status)
	assert.True(t, loaded.RemainingCapital.Equal(decimal.NewFromInt(300)))

	require.Len(t, loaded.Installments, 3)
	for i, inst := range loaded.Installments {
		assert.Equal(t, i+1, inst.Sequence)
		assert.Equal(t, c.ID, inst.CreditID)
		assert.Equal(t, credit.InstallmentStatusPending, inst.Status)
		assert.True(t, inst.TotalAmount.Equal(decimal.NewFromInt(110)))
	}
}

func TestGormCreditRepository_SavePersistsInstallmentState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCreditRepository(db.DB)
	ctx := context.Background()

	c := storedCredit(t, repo, "CR-4002", 2, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC))

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	_, err = loaded.AdvancePayment(1, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.InstallmentsPaid)
	assert.Equal(t, credit.InstallmentStatusPaid, reloaded.Installments[0].Status)
	require.NotNil(t, reloaded.Installments[0].PaidAt)
	assert.Equal(t, credit.InstallmentStatusPending, reloaded.Installments[1].Status)
	assert.True(t, reloaded.RemainingCapital.Equal(decimal.NewFromInt(100)))
}

func TestGormCreditRepository_FindSweepable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCreditRepository(db.DB)
	ctx := context.Background()

	firstDue := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	active := storedCredit(t, repo, "CR-4003", 2, firstDue)

	suspended := storedCredit(t, repo, "CR-4004", 2, firstDue)
	require.NoError(t, suspended.Suspend())
	require.NoError(t, repo.Save(ctx, suspended))

	sweepable, err := repo.FindSweepable(ctx)
	require.NoError(t, err)
	require.Len(t, sweepable, 1)
	assert.Equal(t, active.ID, sweepable[0].ID)
	assert.Len(t, sweepable[0].Installments, 2)
}
