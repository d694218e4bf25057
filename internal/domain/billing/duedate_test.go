package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDateClassifier_Classify(t *testing.T) {
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	classifier := NewDueDateClassifier()

	item := func(due time.Time, terminal bool) DueItem {
		return DueItem{Kind: DocumentKindInvoice, ID: uuid.New(), DueDate: due, Terminal: terminal}
	}

	overdue := item(ref.AddDate(0, 0, -1), false)
	dueToday := item(ref, false)
	dueAtHorizon := item(ref.AddDate(0, 0, 7), false)
	beyondHorizon := item(ref.AddDate(0, 0, 8), false)
	terminal := item(ref.AddDate(0, 0, -5), true)
	undated := DueItem{Kind: DocumentKindInvoice, ID: uuid.New()}

	out := classifier.Classify([]DueItem{overdue, dueToday, dueAtHorizon, beyondHorizon, terminal, undated}, ref, 7)

	require.Len(t, out.Overdue, 1)
	assert.Equal(t, overdue.ID, out.Overdue[0].ID)

	// The horizon is inclusive on both ends: due today and due exactly at
	// ref+7d are both reminders.
	require.Len(t, out.DueSoon, 2)
	assert.Equal(t, dueToday.ID, out.DueSoon[0].ID)
	assert.Equal(t, dueAtHorizon.ID, out.DueSoon[1].ID)
}

func TestDueDateClassifier_ClassifyIsPure(t *testing.T) {
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	classifier := NewDueDateClassifier()
	items := []DueItem{
		{Kind: DocumentKindQuote, ID: uuid.New(), DueDate: ref.AddDate(0, 0, 3)},
		{Kind: DocumentKindInstallment, ID: uuid.New(), DueDate: ref.AddDate(0, 0, -3)},
	}

	first := classifier.Classify(items, ref, 7)
	second := classifier.Classify(items, ref, 7)
	assert.Equal(t, first, second)
}

func TestDueKeys(t *testing.T) {
	id := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	day := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)
	item := DueItem{Kind: DocumentKindInvoice, ID: id}

	assert.Equal(t,
		fmt.Sprintf("billing.invoice:%s:due-soon:2026-03-15", id),
		DueSoonKey(item, day))
	assert.Equal(t,
		fmt.Sprintf("billing.invoice:%s:overdue:2026-03-15", id),
		OverdueKey(item, day))

	// Same item, same day, same key regardless of time of day
	later := day.Add(4 * time.Hour)
	assert.Equal(t, DueSoonKey(item, day), DueSoonKey(item, later))

	// Different day, different key
	assert.NotEqual(t, DueSoonKey(item, day), DueSoonKey(item, day.AddDate(0, 0, 1)))
}
