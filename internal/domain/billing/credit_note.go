package billing

import (
	"fmt"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreditNoteStatus represents the lifecycle status of a credit note (avoir)
type CreditNoteStatus string

const (
	CreditNoteStatusDraft       CreditNoteStatus = "DRAFT"
	CreditNoteStatusValidated   CreditNoteStatus = "VALIDATED"   // Usable for compensation
	CreditNoteStatusCompensated CreditNoteStatus = "COMPENSATED" // Fully consumed against invoices
)

// IsValid checks if the status is a valid CreditNoteStatus
func (s CreditNoteStatus) IsValid() bool {
	switch s {
	case CreditNoteStatusDraft, CreditNoteStatusValidated, CreditNoteStatusCompensated:
		return true
	}
	return false
}

// String returns the string representation of CreditNoteStatus
func (s CreditNoteStatus) String() string {
	return string(s)
}

// CreditNote is the aggregate root for an avoir: a credit issued to a client,
// optionally compensated against outstanding invoices. Remaining decreases
// only through compensation and never goes negative.
type CreditNote struct {
	shared.BaseAggregateRoot
	CreditNoteNumber string           `json:"credit_note_number"`
	Total            decimal.Decimal  `json:"total"`
	Remaining        decimal.Decimal  `json:"remaining"`
	Status           CreditNoteStatus `json:"status"`
	ValidatedAt      *time.Time       `json:"validated_at"`
	CompensatedAt    *time.Time       `json:"compensated_at"`
}

// NewCreditNote creates a new credit note in DRAFT status
func NewCreditNote(creditNoteNumber string, total valueobject.Money) (*CreditNote, error) {
	if creditNoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Credit note number cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note total must be positive")
	}

	return &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CreditNoteNumber:  creditNoteNumber,
		Total:             total.Amount(),
		Remaining:         total.Amount(),
		Status:            CreditNoteStatusDraft,
	}, nil
}

// Validate makes a draft credit note usable for compensation
func (cn *CreditNote) Validate() error {
	if cn.Status != CreditNoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot validate credit note in %s status", cn.Status))
	}
	now := time.Now()
	cn.Status = CreditNoteStatusValidated
	cn.ValidatedAt = &now
	cn.UpdatedAt = now
	cn.IncrementVersion()
	return nil
}

// CompensateAgainst applies part of the credit note against an invoice's open
// balance. The consumed amount is capped by both the note's remaining value
// and the invoice outstanding; the resulting invoice status is derived by the
// invoice's own Reconcile pass.
func (cn *CreditNote) CompensateAgainst(inv *Invoice, amount valueobject.Money, at time.Time) error {
	if cn.Status != CreditNoteStatusValidated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot compensate from credit note in %s status", cn.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Compensation amount must be positive")
	}
	if amount.Amount().GreaterThan(cn.Remaining) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Compensation of %s exceeds remaining credit %s", amount.Amount().StringFixed(2), cn.Remaining.StringFixed(2)))
	}
	if amount.Amount().GreaterThan(inv.Outstanding()) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Compensation of %s exceeds invoice outstanding %s", amount.Amount().StringFixed(2), inv.Outstanding().StringFixed(2)))
	}

	if _, err := inv.RecordPayment(amount, PaymentMethodCreditNote, at); err != nil {
		return err
	}

	cn.Remaining = cn.Remaining.Sub(amount.Amount())
	if cn.Remaining.IsZero() {
		cn.Status = CreditNoteStatusCompensated
		cn.CompensatedAt = &at
		cn.AddDomainEvent(NewCreditNoteCompensatedEvent(cn))
	}
	cn.UpdatedAt = at
	cn.IncrementVersion()
	return nil
}
