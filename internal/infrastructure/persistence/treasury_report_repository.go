package persistence

import (
	"context"
	"time"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTreasuryReportRepository implements TreasuryReportRepository using GORM.
// All aggregation happens in SQL; the repository only shapes the results.
type GormTreasuryReportRepository struct {
	db *gorm.DB
}

// NewGormTreasuryReportRepository creates a new GormTreasuryReportRepository
func NewGormTreasuryReportRepository(db *gorm.DB) *GormTreasuryReportRepository {
	return &GormTreasuryReportRepository{db: db}
}

// InvoiceTotals aggregates the billing side of the period: invoices issued,
// invoices paid, and the receivables still outstanding on overdue invoices.
func (r *GormTreasuryReportRepository) InvoiceTotals(ctx context.Context, periodStart, periodEnd time.Time) (*report.InvoicePeriodTotals, error) {
	totals := &report.InvoicePeriodTotals{}

	type countSum struct {
		Count int
		Total decimal.Decimal
	}

	var issued countSum
	if err := r.db.WithContext(ctx).Table("invoices").
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("created_at >= ? AND created_at < ?", periodStart, periodEnd).
		Where("status <> ?", billing.InvoiceStatusCancelled.String()).
		Scan(&issued).Error; err != nil {
		return nil, err
	}
	totals.IssuedCount = issued.Count
	totals.IssuedTotal = issued.Total

	var paid countSum
	if err := r.db.WithContext(ctx).Table("invoices").
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("status = ?", billing.InvoiceStatusPaid.String()).
		Where("paid_at >= ? AND paid_at < ?", periodStart, periodEnd).
		Scan(&paid).Error; err != nil {
		return nil, err
	}
	totals.PaidCount = paid.Count
	totals.PaidTotal = paid.Total

	// Outstanding receivables are a point-in-time figure over overdue
	// invoices, not bounded by the period.
	var outstanding decimal.Decimal
	if err := r.db.WithContext(ctx).Table("invoices").
		Select("COALESCE(SUM(total - amount_paid), 0)").
		Where("status = ?", billing.InvoiceStatusOverdue.String()).
		Scan(&outstanding).Error; err != nil {
		return nil, err
	}
	totals.OutstandingReceivables = outstanding

	return totals, nil
}

// AccountFlows aggregates per-account bank credits and debits over the period
func (r *GormTreasuryReportRepository) AccountFlows(ctx context.Context, periodStart, periodEnd time.Time) ([]report.AccountFlow, error) {
	var flows []report.AccountFlow
	if err := r.db.WithContext(ctx).Table("bank_transactions t").
		Select("t.account_id AS account_id, a.name AS account_name, COALESCE(SUM(t.credit), 0) AS credits, COALESCE(SUM(t.debit), 0) AS debits").
		Joins("JOIN bank_accounts a ON a.id = t.account_id").
		Where("t.date >= ? AND t.date < ?", periodStart, periodEnd).
		Group("t.account_id, a.name").
		Order("a.name asc").
		Scan(&flows).Error; err != nil {
		return nil, err
	}
	return flows, nil
}

// CashTotals aggregates cash inflows and outflows over the period,
// excluding cancelled movements
func (r *GormTreasuryReportRepository) CashTotals(ctx context.Context, periodStart, periodEnd time.Time) (*report.CashPeriodTotals, error) {
	type inOut struct {
		Inflows  decimal.Decimal
		Outflows decimal.Decimal
	}
	var row inOut
	if err := r.db.WithContext(ctx).Table("cash_movements").
		Select("COALESCE(SUM(CASE WHEN type = 'INFLOW' THEN amount ELSE 0 END), 0) AS inflows, "+
			"COALESCE(SUM(CASE WHEN type = 'OUTFLOW' THEN amount ELSE 0 END), 0) AS outflows").
		Where("date >= ? AND date < ?", periodStart, periodEnd).
		Where("is_cancelled = ?", false).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &report.CashPeriodTotals{Inflows: row.Inflows, Outflows: row.Outflows}, nil
}

var _ report.TreasuryReportRepository = (*GormTreasuryReportRepository)(nil)
