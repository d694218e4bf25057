package report

import (
	"context"
	"fmt"
	"time"

	"github.com/finoffice/backend/internal/domain/report"
	"github.com/finoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AggregationService builds daily and monthly treasury rollups from the
// billing and treasury ledgers. Reports are computed on demand and never
// stored; re-running a report for the same period always reflects the
// ledgers as they stand now.
type AggregationService struct {
	repo   report.TreasuryReportRepository
	clock  shared.Clock
	logger *zap.Logger
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(repo report.TreasuryReportRepository, clock shared.Clock, logger *zap.Logger) *AggregationService {
	return &AggregationService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// DailyReport builds the treasury rollup for the calendar day containing date
func (s *AggregationService) DailyReport(ctx context.Context, date time.Time) (*report.TreasuryReport, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)
	return s.build(ctx, start, end)
}

// MonthlyReport builds the treasury rollup for the given calendar month
func (s *AggregationService) MonthlyReport(ctx context.Context, month time.Month, year int) (*report.TreasuryReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.build(ctx, start, end)
}

func (s *AggregationService) build(ctx context.Context, start, end time.Time) (*report.TreasuryReport, error) {
	invoiceTotals, err := s.repo.InvoiceTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating invoice totals: %w", err)
	}
	flows, err := s.repo.AccountFlows(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating account flows: %w", err)
	}
	cashTotals, err := s.repo.CashTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating cash totals: %w", err)
	}

	r := &report.TreasuryReport{
		PeriodStart:            start,
		PeriodEnd:              end,
		InvoicesIssuedCount:    invoiceTotals.IssuedCount,
		InvoicesIssuedTotal:    invoiceTotals.IssuedTotal,
		InvoicesPaidCount:      invoiceTotals.PaidCount,
		InvoicesPaidTotal:      invoiceTotals.PaidTotal,
		OutstandingReceivables: invoiceTotals.OutstandingReceivables,
		AccountFlows:           flows,
		CashInflows:            cashTotals.Inflows,
		CashOutflows:           cashTotals.Outflows,
	}

	s.logger.Info("treasury report built",
		zap.Time("period_start", start),
		zap.Time("period_end", end),
		zap.Int("invoices_issued", r.InvoicesIssuedCount),
		zap.Int("account_flows", len(r.AccountFlows)),
	)
	return r, nil
}
