package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkOrderStatus represents the lifecycle status of a work order
type WorkOrderStatus string

const (
	WorkOrderStatusDraft      WorkOrderStatus = "DRAFT"
	WorkOrderStatusInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderStatusCompleted  WorkOrderStatus = "COMPLETED"
	WorkOrderStatusOverdue    WorkOrderStatus = "OVERDUE"
	WorkOrderStatusCancelled  WorkOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid WorkOrderStatus
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderStatusDraft, WorkOrderStatusInProgress, WorkOrderStatusCompleted,
		WorkOrderStatusOverdue, WorkOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of WorkOrderStatus
func (s WorkOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the work order can no longer change state
func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderStatusCompleted || s == WorkOrderStatusCancelled
}

// WorkOrderLine is a billable line within a work order, a value object stored as JSONB
type WorkOrderLine struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Settled     bool            `json:"settled"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
}

// WorkOrderLines implements GORM Scanner/Valuer for JSONB storage
type WorkOrderLines []WorkOrderLine

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l WorkOrderLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *WorkOrderLines) Scan(value interface{}) error {
	if value == nil {
		*l = WorkOrderLines{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan WorkOrderLines: unsupported type")
	}

	if len(bytes) == 0 {
		*l = WorkOrderLines{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// WorkOrder is the aggregate root for an intervention / job sheet whose lines
// are settled individually. Its status mirrors the invoice pattern at the
// aggregate level: COMPLETED needs every line settled, OVERDUE needs at least
// one unsettled line past due.
type WorkOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Status       WorkOrderStatus `json:"status"`
	Lines        WorkOrderLines  `json:"lines"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

// NewWorkOrder creates a new work order in DRAFT status
func NewWorkOrder(orderNumber string, customerID uuid.UUID, customerName string, lines []WorkOrderLine) (*WorkOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Work order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Work order must have at least one line")
	}

	return &WorkOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Status:            WorkOrderStatusDraft,
		Lines:             lines,
	}, nil
}

// SettleLine marks one line as settled
func (wo *WorkOrder) SettleLine(lineID uuid.UUID, at time.Time) error {
	if wo.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot settle line on a terminal work order")
	}
	for i := range wo.Lines {
		if wo.Lines[i].ID == lineID {
			if wo.Lines[i].Settled {
				return shared.NewDomainError("INVALID_STATE", "Line is already settled")
			}
			wo.Lines[i].Settled = true
			wo.Lines[i].SettledAt = &at
			wo.UpdatedAt = at
			wo.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Reconcile derives the aggregate status from its lines. COMPLETED is
// checked before OVERDUE, so a fully settled order is never marked overdue.
// Returns the transition made, or nil when nothing changed.
func (wo *WorkOrder) Reconcile(now time.Time) *StatusTransition {
	if wo.Status == WorkOrderStatusDraft || wo.Status.IsTerminal() {
		return nil
	}

	from := wo.Status

	if wo.allLinesSettled() {
		wo.Status = WorkOrderStatusCompleted
		wo.CompletedAt = &now
	} else if wo.hasOverdueLine(now) {
		wo.Status = WorkOrderStatusOverdue
	}

	if wo.Status == from {
		return nil
	}

	wo.UpdatedAt = now
	wo.IncrementVersion()
	return &StatusTransition{From: string(from), To: string(wo.Status)}
}

func (wo *WorkOrder) allLinesSettled() bool {
	for _, l := range wo.Lines {
		if !l.Settled {
			return false
		}
	}
	return len(wo.Lines) > 0
}

func (wo *WorkOrder) hasOverdueLine(now time.Time) bool {
	for _, l := range wo.Lines {
		if !l.Settled && l.DueDate != nil && l.DueDate.Before(now) {
			return true
		}
	}
	return false
}
