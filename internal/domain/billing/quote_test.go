package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoffice/backend/internal/domain/shared/valueobject"
)

func newTestQuote(t *testing.T, validity time.Time) *Quote {
	t.Helper()
	q, err := NewQuote("DEV-001", uuid.New(), "Acme", valueobject.NewMoneyEURFromFloat(500), validity)
	require.NoError(t, err)
	return q
}

func TestQuote_Lifecycle(t *testing.T) {
	q := newTestQuote(t, time.Now().AddDate(0, 1, 0))

	require.NoError(t, q.Send())
	assert.Equal(t, QuoteStatusSent, q.Status)

	require.NoError(t, q.Accept())
	assert.Equal(t, QuoteStatusAccepted, q.Status)
	require.NotNil(t, q.AcceptedAt)

	require.NoError(t, q.Convert())
	assert.Equal(t, QuoteStatusConverted, q.Status)
	require.NotNil(t, q.ConvertedAt)
}

func TestQuote_TerminalStatusesAreFinal(t *testing.T) {
	q := newTestQuote(t, time.Now().AddDate(0, 1, 0))
	require.NoError(t, q.Send())
	require.NoError(t, q.Reject())

	assert.Error(t, q.Accept())
	assert.Error(t, q.Reject())
	assert.Error(t, q.Convert())
	assert.Equal(t, QuoteStatusRejected, q.Status)
}

func TestQuote_OnlyAcceptedConverts(t *testing.T) {
	q := newTestQuote(t, time.Now().AddDate(0, 1, 0))
	require.NoError(t, q.Send())

	assert.Error(t, q.Convert())
	assert.Equal(t, QuoteStatusSent, q.Status)
}

func TestQuote_ExpireIfPast(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("past-validity sent quote expires", func(t *testing.T) {
		q := newTestQuote(t, now.AddDate(0, 0, -1))
		require.NoError(t, q.Send())

		assert.True(t, q.ExpireIfPast(now))
		assert.Equal(t, QuoteStatusExpired, q.Status)
		require.NotNil(t, q.ExpiredAt)

		events := q.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "QuoteExpired", events[0].EventType())
	})

	t.Run("re-run is a no-op", func(t *testing.T) {
		q := newTestQuote(t, now.AddDate(0, 0, -1))
		require.NoError(t, q.Send())
		require.True(t, q.ExpireIfPast(now))
		q.ClearDomainEvents()

		assert.False(t, q.ExpireIfPast(now.AddDate(0, 0, 1)))
		assert.Empty(t, q.GetDomainEvents())
	})

	t.Run("still valid quote is untouched", func(t *testing.T) {
		q := newTestQuote(t, now.AddDate(0, 0, 5))
		require.NoError(t, q.Send())

		assert.False(t, q.ExpireIfPast(now))
		assert.Equal(t, QuoteStatusSent, q.Status)
	})

	t.Run("terminal quotes never expire", func(t *testing.T) {
		for _, setup := range []func(q *Quote){
			func(q *Quote) { _ = q.Accept() },
			func(q *Quote) { _ = q.Reject() },
			func(q *Quote) { _ = q.Accept(); _ = q.Convert() },
		} {
			q := newTestQuote(t, now.AddDate(0, 0, -1))
			require.NoError(t, q.Send())
			setup(q)
			before := q.Status

			assert.False(t, q.ExpireIfPast(now))
			assert.Equal(t, before, q.Status)
		}
	})
}
