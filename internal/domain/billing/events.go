package billing

import (
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoicePaidEvent is raised when an invoice balance clears
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Total          decimal.Decimal `json:"total"`
	PreviousStatus InvoiceStatus   `json:"previous_status"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, previous InvoiceStatus) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		Total:           inv.Total,
		PreviousStatus:  previous,
		PaidAt:          inv.PaidAt,
	}
}

// InvoiceOverdueEvent is raised when an invoice passes its due date unpaid
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	PreviousStatus InvoiceStatus   `json:"previous_status"`
}

// EventType returns the event type name
func (e *InvoiceOverdueEvent) EventType() string {
	return "InvoiceOverdue"
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice, previous InvoiceStatus) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceOverdue", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		Outstanding:     inv.Outstanding(),
		DueDate:         inv.DueDate,
		PreviousStatus:  previous,
	}
}

// QuoteExpiredEvent is raised once when a quote passes its validity date
type QuoteExpiredEvent struct {
	shared.BaseDomainEvent
	QuoteID      uuid.UUID `json:"quote_id"`
	QuoteNumber  string    `json:"quote_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	ValidityDate time.Time `json:"validity_date"`
}

// EventType returns the event type name
func (e *QuoteExpiredEvent) EventType() string {
	return "QuoteExpired"
}

// NewQuoteExpiredEvent creates a new QuoteExpiredEvent
func NewQuoteExpiredEvent(q *Quote) *QuoteExpiredEvent {
	return &QuoteExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("QuoteExpired", "Quote", q.ID),
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
		CustomerID:      q.CustomerID,
		ValidityDate:    q.ValidityDate,
	}
}

// CreditNoteCompensatedEvent is raised when a credit note is fully consumed
type CreditNoteCompensatedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID     uuid.UUID       `json:"credit_note_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	Total            decimal.Decimal `json:"total"`
}

// EventType returns the event type name
func (e *CreditNoteCompensatedEvent) EventType() string {
	return "CreditNoteCompensated"
}

// NewCreditNoteCompensatedEvent creates a new CreditNoteCompensatedEvent
func NewCreditNoteCompensatedEvent(cn *CreditNote) *CreditNoteCompensatedEvent {
	return &CreditNoteCompensatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("CreditNoteCompensated", "CreditNote", cn.ID),
		CreditNoteID:     cn.ID,
		CreditNoteNumber: cn.CreditNoteNumber,
		Total:            cn.Total,
	}
}
