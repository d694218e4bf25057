package credit

import (
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the status of a single loan installment (échéance)
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// Installment is one scheduled repayment of a credit. It is a child entity
// owned by the Credit aggregate; sequence numbers are contiguous starting at 1.
type Installment struct {
	ID          uuid.UUID         `json:"id"`
	CreditID    uuid.UUID         `json:"credit_id"`
	Sequence    int               `json:"sequence"`
	DueDate     time.Time         `json:"due_date"`
	Principal   decimal.Decimal   `json:"principal"`
	Interest    decimal.Decimal   `json:"interest"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Status      InstallmentStatus `json:"status"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
}

// NewInstallment creates a pending installment for the given schedule slot
func NewInstallment(creditID uuid.UUID, sequence int, dueDate time.Time, principal, interest decimal.Decimal) (Installment, error) {
	if sequence < 1 {
		return Installment{}, shared.NewDomainError("INVALID_INPUT", "Installment sequence must start at 1")
	}
	if principal.IsNegative() || interest.IsNegative() {
		return Installment{}, shared.NewDomainError("INVALID_AMOUNT", "Installment amounts cannot be negative")
	}
	return Installment{
		ID:          uuid.New(),
		CreditID:    creditID,
		Sequence:    sequence,
		DueDate:     dueDate,
		Principal:   principal,
		Interest:    interest,
		TotalAmount: principal.Add(interest),
		Status:      InstallmentStatusPending,
	}, nil
}

// IsSettled returns true once the installment has been paid
func (i *Installment) IsSettled() bool {
	return i.Status == InstallmentStatusPaid
}

// markPaid settles the installment at the given time
func (i *Installment) markPaid(at time.Time) {
	i.Status = InstallmentStatusPaid
	i.PaidAt = &at
}
