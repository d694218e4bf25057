package credit

import (
	"fmt"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the aggregate status of a credit (loan)
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusOverdue   Status = "OVERDUE"
	StatusCompleted Status = "COMPLETED"
	StatusSuspended Status = "SUSPENDED" // Operator hold, excluded from sweeps
)

// IsValid checks if the status is a valid credit Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOverdue, StatusCompleted, StatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Credit is the aggregate root for an amortizing loan. It owns its
// installment schedule: all installment state changes go through the credit.
type Credit struct {
	shared.BaseAggregateRoot
	CreditNumber     string          `json:"credit_number"`
	InitialCapital   decimal.Decimal `json:"initial_capital"`
	RemainingCapital decimal.Decimal `json:"remaining_capital"`
	DurationMonths   int             `json:"duration_months"`
	InstallmentsPaid int             `json:"installments_paid"`
	Status           Status          `json:"status"`
	Installments     []Installment   `json:"installments"`
}

// NewCredit creates an active credit with its full installment schedule.
// The schedule must cover sequences 1..durationMonths contiguously.
func NewCredit(creditNumber string, initialCapital valueobject.Money, durationMonths int, installments []Installment) (*Credit, error) {
	if creditNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Credit number cannot be empty")
	}
	if initialCapital.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial capital must be positive")
	}
	if durationMonths < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Duration must be at least one month")
	}
	if len(installments) != durationMonths {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Schedule has %d installments, expected %d", len(installments), durationMonths))
	}
	for i, inst := range installments {
		if inst.Sequence != i+1 {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Installment sequences must be contiguous from 1, got %d at position %d", inst.Sequence, i+1))
		}
	}

	c := &Credit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CreditNumber:      creditNumber,
		InitialCapital:    initialCapital.Amount(),
		RemainingCapital:  initialCapital.Amount(),
		DurationMonths:    durationMonths,
		Status:            StatusActive,
		Installments:      installments,
	}
	for i := range c.Installments {
		c.Installments[i].CreditID = c.ID
	}
	return c, nil
}

// NextPayable returns the lowest-sequence unsettled installment, or nil when
// the schedule is fully paid. At most one installment is ever "next due".
func (c *Credit) NextPayable() *Installment {
	for i := range c.Installments {
		if !c.Installments[i].IsSettled() {
			return &c.Installments[i]
		}
	}
	return nil
}

// AdvancePayment settles the installment with the given sequence number.
// Only the next unsettled installment may be paid; paying any later slot is
// rejected with an OutOfSequenceError and leaves all states unchanged.
// Settling an installment decreases the remaining capital by its principal.
func (c *Credit) AdvancePayment(sequence int, at time.Time) (*Installment, error) {
	if c.Status == StatusSuspended {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot record payment on a suspended credit")
	}

	next := c.NextPayable()
	if next == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "All installments are already paid")
	}
	if sequence != next.Sequence {
		return nil, NewOutOfSequenceError(c.ID, sequence, next.Sequence)
	}

	next.markPaid(at)
	c.InstallmentsPaid++
	c.RemainingCapital = c.RemainingCapital.Sub(next.Principal)
	if c.RemainingCapital.IsNegative() {
		c.RemainingCapital = decimal.Zero
	}
	c.UpdatedAt = at
	c.IncrementVersion()
	c.AddDomainEvent(NewInstallmentPaidEvent(c, next))

	c.deriveStatus(at)
	return next, nil
}

// SweepOverdue marks every pending installment past its due date as overdue
// and re-derives the aggregate status. Returns the installments transitioned
// on this run; an immediate re-run returns none.
func (c *Credit) SweepOverdue(now time.Time) []Installment {
	if c.Status == StatusSuspended {
		return nil
	}

	var transitioned []Installment
	for i := range c.Installments {
		inst := &c.Installments[i]
		if inst.Status == InstallmentStatusPending && inst.DueDate.Before(now) {
			inst.Status = InstallmentStatusOverdue
			transitioned = append(transitioned, *inst)
			c.AddDomainEvent(NewInstallmentOverdueEvent(c, inst))
		}
	}
	if len(transitioned) > 0 {
		c.UpdatedAt = now
		c.IncrementVersion()
	}
	c.deriveStatus(now)
	return transitioned
}

// Suspend puts the credit on operator hold; sweeps and payments skip it
func (c *Credit) Suspend() error {
	if c.Status == StatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot suspend a completed credit")
	}
	c.Status = StatusSuspended
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Resume lifts an operator hold and re-derives the status from the schedule
func (c *Credit) Resume(now time.Time) error {
	if c.Status != StatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only suspended credits can be resumed")
	}
	c.Status = StatusActive
	c.deriveStatus(now)
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// deriveStatus aggregates installment states into the credit status.
// COMPLETED is checked before OVERDUE: a fully paid credit is never marked
// overdue even if a payment was late historically.
func (c *Credit) deriveStatus(now time.Time) {
	if c.Status == StatusSuspended {
		return
	}

	from := c.Status
	switch {
	case c.InstallmentsPaid == c.DurationMonths && !c.hasOverdueInstallment():
		c.Status = StatusCompleted
	case c.hasOverdueInstallment():
		c.Status = StatusOverdue
	default:
		c.Status = StatusActive
	}

	if c.Status != from {
		c.UpdatedAt = now
		switch c.Status {
		case StatusCompleted:
			c.AddDomainEvent(NewCreditCompletedEvent(c))
		case StatusOverdue:
			c.AddDomainEvent(NewCreditOverdueEvent(c))
		}
	}
}

func (c *Credit) hasOverdueInstallment() bool {
	for i := range c.Installments {
		if c.Installments[i].Status == InstallmentStatusOverdue {
			return true
		}
	}
	return false
}
