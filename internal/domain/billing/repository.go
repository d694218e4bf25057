package billing

import (
	"context"
	"time"

	"github.com/finoffice/backend/internal/domain/shared"
)

// InvoiceRepository provides persistence for the Invoice aggregate
type InvoiceRepository interface {
	shared.Repository[Invoice]
	// FindOpen returns invoices in SENT, PARTIAL or OVERDUE status, ordered
	// by id so batch passes process documents in a stable order.
	FindOpen(ctx context.Context) ([]Invoice, error)
}

// QuoteRepository provides persistence for the Quote aggregate
type QuoteRepository interface {
	shared.Repository[Quote]
	// FindExpirable returns non-terminal quotes whose validity date precedes
	// the given time, ordered by id.
	FindExpirable(ctx context.Context, before time.Time) ([]Quote, error)
}

// WorkOrderRepository provides persistence for the WorkOrder aggregate
type WorkOrderRepository interface {
	shared.Repository[WorkOrder]
	// FindActive returns work orders in IN_PROGRESS or OVERDUE status, ordered by id
	FindActive(ctx context.Context) ([]WorkOrder, error)
}

// CreditNoteRepository provides persistence for the CreditNote aggregate
type CreditNoteRepository interface {
	shared.Repository[CreditNote]
}
