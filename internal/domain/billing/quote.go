package billing

import (
	"fmt"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle status of a quote (devis)
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
	QuoteStatusConverted QuoteStatus = "CONVERTED" // Turned into an invoice
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the quote can no longer change state.
// Terminal quotes never transition back to DRAFT or SENT.
func (s QuoteStatus) IsTerminal() bool {
	switch s {
	case QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

// Quote is the aggregate root for a price quote (devis) issued to a client
// prior to invoicing.
type Quote struct {
	shared.BaseAggregateRoot
	QuoteNumber  string          `json:"quote_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	ValidityDate time.Time       `json:"validity_date"`
	Status       QuoteStatus     `json:"status"`
	AcceptedAt   *time.Time      `json:"accepted_at"`
	RejectedAt   *time.Time      `json:"rejected_at"`
	ExpiredAt    *time.Time      `json:"expired_at"`
	ConvertedAt  *time.Time      `json:"converted_at"`
}

// NewQuote creates a new quote in DRAFT status
func NewQuote(quoteNumber string, customerID uuid.UUID, customerName string, total valueobject.Money, validityDate time.Time) (*Quote, error) {
	if quoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quote number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Quote total must be positive")
	}

	return &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		QuoteNumber:       quoteNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Total:             total.Amount(),
		ValidityDate:      validityDate,
		Status:            QuoteStatusDraft,
	}, nil
}

// Send marks a draft quote as sent
func (q *Quote) Send() error {
	if q.Status != QuoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quote in %s status", q.Status))
	}
	q.Status = QuoteStatusSent
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// Accept marks the quote as accepted by the client
func (q *Quote) Accept() error {
	if q.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept quote in %s status", q.Status))
	}
	now := time.Now()
	q.Status = QuoteStatusAccepted
	q.AcceptedAt = &now
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// Reject marks the quote as rejected by the client
func (q *Quote) Reject() error {
	if q.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject quote in %s status", q.Status))
	}
	now := time.Now()
	q.Status = QuoteStatusRejected
	q.RejectedAt = &now
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// Convert marks an accepted quote as converted into an invoice
func (q *Quote) Convert() error {
	if q.Status != QuoteStatusAccepted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Only accepted quotes can be converted, current status: %s", q.Status))
	}
	now := time.Now()
	q.Status = QuoteStatusConverted
	q.ConvertedAt = &now
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// ExpireIfPast transitions a non-terminal quote whose validity date has
// passed to EXPIRED. Returns true only on the run that makes the transition;
// the expiry sweep re-run is then a no-op and does not re-notify.
func (q *Quote) ExpireIfPast(now time.Time) bool {
	if q.Status.IsTerminal() {
		return false
	}
	if !q.ValidityDate.Before(now) {
		return false
	}

	q.Status = QuoteStatusExpired
	q.ExpiredAt = &now
	q.UpdatedAt = now
	q.IncrementVersion()
	q.AddDomainEvent(NewQuoteExpiredEvent(q))
	return true
}
