package credit

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
)

// newTestCredit builds a credit of n monthly installments of 100 principal
// and 10 interest each, first due at firstDue.
func newTestCredit(t *testing.T, n int, firstDue time.Time) *Credit {
	t.Helper()
	installments := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		inst, err := NewInstallment(uuid.Nil, i, firstDue.AddDate(0, i-1, 0),
			decimal.NewFromInt(100), decimal.NewFromInt(10))
		require.NoError(t, err)
		installments = append(installments, inst)
	}
	c, err := NewCredit("CR-001", valueobject.NewMoneyEURFromFloat(float64(n*100)), n, installments)
	require.NoError(t, err)
	return c
}

func TestNewCredit_Validation(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("schedule length must match duration", func(t *testing.T) {
		inst, err := NewInstallment(uuid.Nil, 1, due, decimal.NewFromInt(100), decimal.Zero)
		require.NoError(t, err)
		_, err = NewCredit("CR-001", valueobject.NewMoneyEURFromFloat(200), 2, []Installment{inst})
		assert.Error(t, err)
	})

	t.Run("sequences must be contiguous from 1", func(t *testing.T) {
		first, err := NewInstallment(uuid.Nil, 1, due, decimal.NewFromInt(100), decimal.Zero)
		require.NoError(t, err)
		third, err := NewInstallment(uuid.Nil, 3, due.AddDate(0, 1, 0), decimal.NewFromInt(100), decimal.Zero)
		require.NoError(t, err)
		_, err = NewCredit("CR-001", valueobject.NewMoneyEURFromFloat(200), 2, []Installment{first, third})
		assert.Error(t, err)
	})

	t.Run("installments adopt the credit id", func(t *testing.T) {
		c := newTestCredit(t, 3, due)
		for _, inst := range c.Installments {
			assert.Equal(t, c.ID, inst.CreditID)
		}
	})
}

func TestCredit_AdvancePayment_Sequence(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 1)

	t.Run("pays installments strictly in order", func(t *testing.T) {
		c := newTestCredit(t, 3, due)

		inst, err := c.AdvancePayment(1, now)
		require.NoError(t, err)
		assert.Equal(t, 1, inst.Sequence)
		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		require.NotNil(t, inst.PaidAt)
		assert.Equal(t, 1, c.InstallmentsPaid)
		assert.True(t, c.RemainingCapital.Equal(decimal.NewFromInt(200)))
	})

	t.Run("skipping a slot is rejected and changes nothing", func(t *testing.T) {
		c := newTestCredit(t, 3, due)

		_, err := c.AdvancePayment(2, now)
		require.Error(t, err)

		var oos *OutOfSequenceError
		require.True(t, errors.As(err, &oos))
		assert.Equal(t, 2, oos.Requested)
		assert.Equal(t, 1, oos.Expected)

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "OUT_OF_SEQUENCE", de.Code)

		assert.Equal(t, 0, c.InstallmentsPaid)
		assert.Equal(t, InstallmentStatusPending, c.Installments[1].Status)
	})

	t.Run("re-paying a settled slot is rejected", func(t *testing.T) {
		c := newTestCredit(t, 3, due)
		_, err := c.AdvancePayment(1, now)
		require.NoError(t, err)

		_, err = c.AdvancePayment(1, now)
		require.Error(t, err)
		var oos *OutOfSequenceError
		require.True(t, errors.As(err, &oos))
		assert.Equal(t, 2, oos.Expected)
	})

	t.Run("fully paid schedule rejects further payments", func(t *testing.T) {
		c := newTestCredit(t, 2, due)
		_, err := c.AdvancePayment(1, now)
		require.NoError(t, err)
		_, err = c.AdvancePayment(2, now)
		require.NoError(t, err)

		_, err = c.AdvancePayment(3, now)
		assert.Error(t, err)
	})
}

func TestCredit_Completion(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, 1)

	c := newTestCredit(t, 2, due)
	_, err := c.AdvancePayment(1, now)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, c.Status)

	_, err = c.AdvancePayment(2, now)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, c.Status)
	assert.True(t, c.RemainingCapital.IsZero())
	assert.Nil(t, c.NextPayable())

	var types []string
	for _, e := range c.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, "CreditCompleted")
}

func TestCredit_SweepOverdue(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("past-due pending installments become overdue", func(t *testing.T) {
		c := newTestCredit(t, 3, due)
		// Two months past the first due date: installments 1 and 2 are late
		now := due.AddDate(0, 1, 1)

		transitioned := c.SweepOverdue(now)
		require.Len(t, transitioned, 2)
		assert.Equal(t, InstallmentStatusOverdue, c.Installments[0].Status)
		assert.Equal(t, InstallmentStatusOverdue, c.Installments[1].Status)
		assert.Equal(t, InstallmentStatusPending, c.Installments[2].Status)
		assert.Equal(t, StatusOverdue, c.Status)
	})

	t.Run("re-run transitions nothing", func(t *testing.T) {
		c := newTestCredit(t, 3, due)
		now := due.AddDate(0, 0, 1)
		require.Len(t, c.SweepOverdue(now), 1)

		assert.Empty(t, c.SweepOverdue(now))
	})

	t.Run("paid installments are not swept", func(t *testing.T) {
		c := newTestCredit(t, 3, due)
		_, err := c.AdvancePayment(1, due)
		require.NoError(t, err)

		transitioned := c.SweepOverdue(due.AddDate(0, 0, 1))
		assert.Empty(t, transitioned)
		assert.Equal(t, StatusActive, c.Status)
	})

	t.Run("suspended credits are skipped", func(t *testing.T) {
		c := newTestCredit(t, 3, due)
		require.NoError(t, c.Suspend())

		assert.Empty(t, c.SweepOverdue(due.AddDate(0, 1, 0)))
		assert.Equal(t, StatusSuspended, c.Status)
	})
}

func TestCredit_CompletedBeatsOverdue(t *testing.T) {
	// A credit whose last installment was paid late: the settled schedule
	// decides, the aggregate ends COMPLETED, not OVERDUE.
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	c := newTestCredit(t, 2, due)

	late := due.AddDate(0, 3, 0)
	c.SweepOverdue(late)
	require.Equal(t, StatusOverdue, c.Status)

	_, err := c.AdvancePayment(1, late)
	require.NoError(t, err)
	_, err = c.AdvancePayment(2, late)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, c.Status)
}

func TestCredit_SuspendResume(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	c := newTestCredit(t, 2, due)

	require.NoError(t, c.Suspend())
	_, err := c.AdvancePayment(1, due)
	assert.Error(t, err, "payments on a suspended credit must be rejected")

	require.NoError(t, c.Resume(due))
	assert.Equal(t, StatusActive, c.Status)

	_, err = c.AdvancePayment(1, due)
	assert.NoError(t, err)
}
