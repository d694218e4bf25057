package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountFlow is one account's credit/debit totals over the report period
type AccountFlow struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Credits     decimal.Decimal `json:"credits"`
	Debits      decimal.Decimal `json:"debits"`
}

// TreasuryReport is the read model for a daily or monthly treasury rollup.
// It is computed from the same ledger snapshot the reconciliation procedures
// write, so its figures never contradict the stored statuses.
type TreasuryReport struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	InvoicesIssuedCount    int             `json:"invoices_issued_count"`
	InvoicesIssuedTotal    decimal.Decimal `json:"invoices_issued_total"`
	InvoicesPaidCount      int             `json:"invoices_paid_count"`
	InvoicesPaidTotal      decimal.Decimal `json:"invoices_paid_total"`
	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"` // Σ(total - amount_paid) over overdue invoices

	AccountFlows []AccountFlow   `json:"account_flows"`
	CashInflows  decimal.Decimal `json:"cash_inflows"`  // Cancelled movements excluded
	CashOutflows decimal.Decimal `json:"cash_outflows"` // Cancelled movements excluded
}

// InvoicePeriodTotals carries the billing-side aggregates for one period
type InvoicePeriodTotals struct {
	IssuedCount            int
	IssuedTotal            decimal.Decimal
	PaidCount              int
	PaidTotal              decimal.Decimal
	OutstandingReceivables decimal.Decimal
}

// CashPeriodTotals carries the cash-side aggregates for one period
type CashPeriodTotals struct {
	Inflows  decimal.Decimal
	Outflows decimal.Decimal
}

// TreasuryReportRepository is the read-only query surface the aggregator
// runs on. Implementations aggregate in SQL; nothing here mutates state.
type TreasuryReportRepository interface {
	InvoiceTotals(ctx context.Context, periodStart, periodEnd time.Time) (*InvoicePeriodTotals, error)
	AccountFlows(ctx context.Context, periodStart, periodEnd time.Time) ([]AccountFlow, error)
	CashTotals(ctx context.Context, periodStart, periodEnd time.Time) (*CashPeriodTotals, error)
}
