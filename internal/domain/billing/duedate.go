package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document kinds recognised by the due-date classifier
const (
	DocumentKindInvoice     = "billing.invoice"
	DocumentKindQuote       = "billing.quote"
	DocumentKindInstallment = "credit.installment"
)

// DueItem is the classifier's view of a document: just enough to place it in
// a due-date bucket. Callers map their aggregates onto it.
type DueItem struct {
	Kind     string
	ID       uuid.UUID
	DueDate  time.Time
	Terminal bool // terminal documents are never classified
}

// Classification partitions a document set by due-date proximity
type Classification struct {
	DueSoon []DueItem
	Overdue []DueItem
}

// DueDateClassifier buckets documents relative to a reference time. It is
// pure: same inputs, same output. Duplicate suppression of "due soon"
// notifications belongs to the notification sink, keyed by DueSoonKey.
type DueDateClassifier struct{}

// NewDueDateClassifier creates a classifier
func NewDueDateClassifier() *DueDateClassifier {
	return &DueDateClassifier{}
}

// Classify partitions items into due-soon and overdue buckets.
// An item with a due date inside [ref, ref+horizonDays] is due soon; one with
// a due date strictly before ref is overdue. Terminal and undated items are
// excluded.
func (c *DueDateClassifier) Classify(items []DueItem, ref time.Time, horizonDays int) Classification {
	horizon := ref.AddDate(0, 0, horizonDays)
	var out Classification
	for _, item := range items {
		if item.Terminal || item.DueDate.IsZero() {
			continue
		}
		switch {
		case item.DueDate.Before(ref):
			out.Overdue = append(out.Overdue, item)
		case !item.DueDate.After(horizon):
			out.DueSoon = append(out.DueSoon, item)
		}
	}
	return out
}

// DueSoonKey returns the stable idempotency key for a due-soon notification
// about this item on the given classification day. Re-running the classifier
// the same day yields the same key, so the sink can suppress the duplicate.
func DueSoonKey(item DueItem, day time.Time) string {
	return fmt.Sprintf("%s:%s:due-soon:%s", item.Kind, item.ID, day.Format("2006-01-02"))
}

// OverdueKey returns the stable idempotency key for an overdue notification
// about this item on the given classification day.
func OverdueKey(item DueItem, day time.Time) string {
	return fmt.Sprintf("%s:%s:overdue:%s", item.Kind, item.ID, day.Format("2006-01-02"))
}
