package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/domain/report"
	"github.com/finoffice/backend/internal/domain/shared"
)

// stubReportRepo returns canned aggregates and records the periods it was asked for
type stubReportRepo struct {
	invoiceTotals *report.InvoicePeriodTotals
	flows         []report.AccountFlow
	cashTotals    *report.CashPeriodTotals
	err           error

	periodStart time.Time
	periodEnd   time.Time
}

func (s *stubReportRepo) InvoiceTotals(_ context.Context, start, end time.Time) (*report.InvoicePeriodTotals, error) {
	s.periodStart, s.periodEnd = start, end
	if s.err != nil {
		return nil, s.err
	}
	return s.invoiceTotals, nil
}

func (s *stubReportRepo) AccountFlows(_ context.Context, start, end time.Time) ([]report.AccountFlow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.flows, nil
}

func (s *stubReportRepo) CashTotals(_ context.Context, start, end time.Time) (*report.CashPeriodTotals, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cashTotals, nil
}

func newStubRepo() *stubReportRepo {
	return &stubReportRepo{
		invoiceTotals: &report.InvoicePeriodTotals{
			IssuedCount:            4,
			IssuedTotal:            decimal.NewFromInt(12000),
			PaidCount:              2,
			PaidTotal:              decimal.NewFromInt(5500),
			OutstandingReceivables: decimal.NewFromInt(3200),
		},
		flows: []report.AccountFlow{
			{AccountID: uuid.New(), AccountName: "Compte courant", Credits: decimal.NewFromInt(5500), Debits: decimal.NewFromInt(1200)},
		},
		cashTotals: &report.CashPeriodTotals{
			Inflows:  decimal.NewFromInt(800),
			Outflows: decimal.NewFromInt(150),
		},
	}
}

func TestAggregationService_DailyReport(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	service := NewAggregationService(repo, shared.SystemClock{}, zap.NewNop())

	day := time.Date(2026, 3, 9, 15, 42, 0, 0, time.UTC)
	rep, err := service.DailyReport(ctx, day)
	require.NoError(t, err)

	// the period is the half-open calendar day containing the date
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), rep.PeriodStart)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), rep.PeriodEnd)
	assert.Equal(t, rep.PeriodStart, repo.periodStart)
	assert.Equal(t, rep.PeriodEnd, repo.periodEnd)

	assert.Equal(t, 4, rep.InvoicesIssuedCount)
	assert.Equal(t, 2, rep.InvoicesPaidCount)
	assert.True(t, rep.InvoicesPaidTotal.Equal(decimal.NewFromInt(5500)))
	assert.True(t, rep.OutstandingReceivables.Equal(decimal.NewFromInt(3200)))
	require.Len(t, rep.AccountFlows, 1)
	assert.True(t, rep.CashInflows.Equal(decimal.NewFromInt(800)))
	assert.True(t, rep.CashOutflows.Equal(decimal.NewFromInt(150)))
}

func TestAggregationService_MonthlyReport(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	service := NewAggregationService(repo, shared.SystemClock{}, zap.NewNop())

	rep, err := service.MonthlyReport(ctx, time.February, 2026)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), rep.PeriodStart)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), rep.PeriodEnd)
}

func TestAggregationService_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	repo.err = errors.New("pq: relation does not exist")
	service := NewAggregationService(repo, shared.SystemClock{}, zap.NewNop())

	_, err := service.DailyReport(ctx, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregating invoice totals")
}
