package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"     // Not yet sent to the client
	InvoiceStatusSent      InvoiceStatus = "SENT"      // Sent, awaiting payment
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"   // Partially paid, 0 < amount_paid < total
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully paid, amount_paid >= total
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"   // Past due date with an open balance
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Cancelled before payment
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOpen returns true if the invoice still carries a collectible balance
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodTransfer   PaymentMethod = "TRANSFER"
	PaymentMethodCheque     PaymentMethod = "CHEQUE"
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodCreditNote PaymentMethod = "CREDIT_NOTE" // Compensation from an avoir
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCheque, PaymentMethodCash,
		PaymentMethodCard, PaymentMethodCreditNote:
		return true
	}
	return false
}

// PaymentRecord is an immutable payment applied to an invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type PaymentRecord struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`
	PaidAt time.Time       `json:"paid_at"`
}

// PaymentRecords is a slice of PaymentRecord that implements GORM Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Sum returns the total of all payment records
func (p PaymentRecords) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, r := range p {
		total = total.Add(r.Amount)
	}
	return total
}

// Invoice is the aggregate root for a client invoice. The CRUD layer creates
// invoices; the reconciliation engine only transitions status fields from the
// payment facts recorded against them.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	DueDate        *time.Time      `json:"due_date"`
	Status         InvoiceStatus   `json:"status"`
	PaymentRecords PaymentRecords  `json:"payment_records"`
	PaidAt         *time.Time      `json:"paid_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
}

// NewInvoice creates a new invoice in DRAFT status
func NewInvoice(invoiceNumber string, customerID uuid.UUID, customerName string, total valueobject.Money, dueDate *time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Total:             total.Amount(),
		AmountPaid:        decimal.Zero,
		DueDate:           dueDate,
		Status:            InvoiceStatusDraft,
		PaymentRecords:    PaymentRecords{},
	}, nil
}

// Send marks a draft invoice as sent to the client
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}
	inv.Status = InvoiceStatusSent
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// RecordPayment records an immutable payment fact against the invoice.
// The resulting status is derived by Reconcile, not here: interactive payment
// recording and the periodic status pass share one set of transition rules.
func (inv *Invoice) RecordPayment(amount valueobject.Money, method PaymentMethod, paidAt time.Time) (*PaymentRecord, error) {
	if inv.Status.IsTerminal() && inv.Status != InvoiceStatusPaid {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment method is not valid")
	}
	if inv.AmountPaid.Add(amount.Amount()).GreaterThan(inv.Total) {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Payment of %s would exceed invoice total %s", amount.Amount().StringFixed(2), inv.Total.StringFixed(2)))
	}

	record := PaymentRecord{
		ID:     uuid.New(),
		Amount: amount.Amount(),
		Method: method,
		PaidAt: paidAt,
	}
	inv.PaymentRecords = append(inv.PaymentRecords, record)
	inv.AmountPaid = inv.AmountPaid.Add(amount.Amount())
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return &record, nil
}

// Cancel cancels an invoice before any payment has been applied
func (inv *Invoice) Cancel() error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.AmountPaid.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel invoice with recorded payments")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// Reconcile derives the invoice status from its payment facts at the given
// reference time and returns the transition made, or nil when nothing changed.
//
// Rules, in priority order:
//  1. amount_paid >= total            -> PAID (PaidAt set once, kept thereafter)
//  2. SENT and 0 < amount_paid<total  -> PARTIAL
//  3. SENT/PARTIAL past due, unpaid   -> OVERDUE
//
// Rule 2 deliberately requires SENT: an invoice already OVERDUE that receives
// a partial payment stays OVERDUE. Rule 3 is evaluated after rule 2 within
// the same pass so that a partially paid, past-due invoice lands on OVERDUE
// in one run, which keeps repeated runs idempotent.
func (inv *Invoice) Reconcile(now time.Time) *StatusTransition {
	if inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusCancelled {
		return nil
	}

	from := inv.Status

	if inv.AmountPaid.GreaterThanOrEqual(inv.Total) {
		if inv.Status == InvoiceStatusPaid {
			return nil
		}
		inv.Status = InvoiceStatusPaid
		if inv.PaidAt == nil {
			paidAt := inv.lastPaymentTime(now)
			inv.PaidAt = &paidAt
		}
		inv.UpdatedAt = now
		inv.IncrementVersion()
		inv.AddDomainEvent(NewInvoicePaidEvent(inv, from))
		return &StatusTransition{From: string(from), To: string(inv.Status)}
	}

	if inv.Status == InvoiceStatusSent && inv.AmountPaid.GreaterThan(decimal.Zero) {
		inv.Status = InvoiceStatusPartial
	}

	if (inv.Status == InvoiceStatusSent || inv.Status == InvoiceStatusPartial) &&
		inv.DueDate != nil && inv.DueDate.Before(now) {
		inv.Status = InvoiceStatusOverdue
	}

	if inv.Status == from {
		return nil
	}

	inv.UpdatedAt = now
	inv.IncrementVersion()
	if inv.Status == InvoiceStatusOverdue {
		inv.AddDomainEvent(NewInvoiceOverdueEvent(inv, from))
	}
	return &StatusTransition{From: string(from), To: string(inv.Status)}
}

// lastPaymentTime returns the timestamp of the most recent payment record,
// used as PaidAt when the balance first clears. Falls back to now when no
// record carries a timestamp.
func (inv *Invoice) lastPaymentTime(now time.Time) time.Time {
	last := time.Time{}
	for _, r := range inv.PaymentRecords {
		if r.PaidAt.After(last) {
			last = r.PaidAt
		}
	}
	if last.IsZero() {
		return now
	}
	return last
}

// Outstanding returns total - amount_paid (never negative)
func (inv *Invoice) Outstanding() decimal.Decimal {
	out := inv.Total.Sub(inv.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// DueItem maps the invoice onto the due-date classifier's input shape
func (inv *Invoice) DueItem() DueItem {
	item := DueItem{
		Kind:     DocumentKindInvoice,
		ID:       inv.ID,
		Terminal: !inv.Status.IsOpen(),
	}
	if inv.DueDate != nil {
		item.DueDate = *inv.DueDate
	}
	return item
}

// StatusTransition describes a single status change made by a reconciliation pass
type StatusTransition struct {
	From string
	To   string
}
