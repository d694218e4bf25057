package credit

import (
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentPaidEvent is raised when an installment is settled
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	CreditID         uuid.UUID       `json:"credit_id"`
	CreditNumber     string          `json:"credit_number"`
	Sequence         int             `json:"sequence"`
	Principal        decimal.Decimal `json:"principal"`
	RemainingCapital decimal.Decimal `json:"remaining_capital"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}

// EventType returns the event type name
func (e *InstallmentPaidEvent) EventType() string {
	return "CreditInstallmentPaid"
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(c *Credit, inst *Installment) *InstallmentPaidEvent {
	return &InstallmentPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("CreditInstallmentPaid", "Credit", c.ID),
		CreditID:         c.ID,
		CreditNumber:     c.CreditNumber,
		Sequence:         inst.Sequence,
		Principal:        inst.Principal,
		RemainingCapital: c.RemainingCapital,
		PaidAt:           inst.PaidAt,
	}
}

// InstallmentOverdueEvent is raised when a pending installment passes its due date
type InstallmentOverdueEvent struct {
	shared.BaseDomainEvent
	CreditID     uuid.UUID       `json:"credit_id"`
	CreditNumber string          `json:"credit_number"`
	Sequence     int             `json:"sequence"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	DueDate      time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InstallmentOverdueEvent) EventType() string {
	return "CreditInstallmentOverdue"
}

// NewInstallmentOverdueEvent creates a new InstallmentOverdueEvent
func NewInstallmentOverdueEvent(c *Credit, inst *Installment) *InstallmentOverdueEvent {
	return &InstallmentOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditInstallmentOverdue", "Credit", c.ID),
		CreditID:        c.ID,
		CreditNumber:    c.CreditNumber,
		Sequence:        inst.Sequence,
		TotalAmount:     inst.TotalAmount,
		DueDate:         inst.DueDate,
	}
}

// CreditCompletedEvent is raised when every installment of a credit is settled
type CreditCompletedEvent struct {
	shared.BaseDomainEvent
	CreditID     uuid.UUID `json:"credit_id"`
	CreditNumber string    `json:"credit_number"`
}

// EventType returns the event type name
func (e *CreditCompletedEvent) EventType() string {
	return "CreditCompleted"
}

// NewCreditCompletedEvent creates a new CreditCompletedEvent
func NewCreditCompletedEvent(c *Credit) *CreditCompletedEvent {
	return &CreditCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditCompleted", "Credit", c.ID),
		CreditID:        c.ID,
		CreditNumber:    c.CreditNumber,
	}
}

// CreditOverdueEvent is raised when a credit aggregates at least one overdue installment
type CreditOverdueEvent struct {
	shared.BaseDomainEvent
	CreditID         uuid.UUID       `json:"credit_id"`
	CreditNumber     string          `json:"credit_number"`
	RemainingCapital decimal.Decimal `json:"remaining_capital"`
}

// EventType returns the event type name
func (e *CreditOverdueEvent) EventType() string {
	return "CreditOverdue"
}

// NewCreditOverdueEvent creates a new CreditOverdueEvent
func NewCreditOverdueEvent(c *Credit) *CreditOverdueEvent {
	return &CreditOverdueEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("CreditOverdue", "Credit", c.ID),
		CreditID:         c.ID,
		CreditNumber:     c.CreditNumber,
		RemainingCapital: c.RemainingCapital,
	}
}
