package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/shared/valueobject"
)

var quoteRef = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newQuoteService(repos *memRepos, bus *collectingBus, sink *collectingSink) *QuoteExpiryService {
	return NewQuoteExpiryService(
		repos.scope(),
		bus,
		testNotifier(sink, newMemIdempotencyStore()),
		shared.FixedClock{Instant: quoteRef},
		zap.NewNop(),
	)
}

func draftQuote(t *testing.T, validity time.Time) *billing.Quote {
	t.Helper()
	q, err := billing.NewQuote("DEV-2001", uuid.New(), "Acme SARL", valueobject.NewMoneyEURFromFloat(1500), validity)
	require.NoError(t, err)
	return q
}

func TestQuoteExpiryService_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("expires stale quotes and notifies", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		sink := &collectingSink{}
		service := newQuoteService(repos, bus, sink)

		stale := draftQuote(t, quoteRef.Add(-24*time.Hour))
		require.NoError(t, stale.Send())
		valid := draftQuote(t, quoteRef.Add(24*time.Hour))
		repos.quotes[stale.ID] = *stale
		repos.quotes[valid.ID] = *valid

		summary, err := service.Sweep(ctx, true)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Processed)
		assert.Equal(t, 1, summary.Transitions)
		assert.Equal(t, 1, summary.Notifications)

		assert.Equal(t, billing.QuoteStatusExpired, repos.quotes[stale.ID].Status)
		assert.Equal(t, billing.QuoteStatusDraft, repos.quotes[valid.ID].Status)

		assert.Equal(t, []string{"QuoteExpired"}, bus.eventTypes())

		notices := sink.byType("billing.quote.expired")
		require.Len(t, notices, 1)
		assert.Equal(t, stale.ID, notices[0].EntityID)
		assert.Equal(t, "DEV-2001", notices[0].Payload["quote_number"])
	})

	t.Run("notify flag off suppresses dispatch but not the transition", func(t *testing.T) {
		repos := newMemRepos()
		sink := &collectingSink{}
		service := newQuoteService(repos, &collectingBus{}, sink)

		stale := draftQuote(t, quoteRef.Add(-24*time.Hour))
		repos.quotes[stale.ID] = *stale

		summary, err := service.Sweep(ctx, false)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Transitions)
		assert.Equal(t, 0, summary.Notifications)
		assert.Equal(t, 0, sink.count())
		assert.Equal(t, billing.QuoteStatusExpired, repos.quotes[stale.ID].Status)
	})

	t.Run("re-run finds nothing expirable", func(t *testing.T) {
		repos := newMemRepos()
		service := newQuoteService(repos, &collectingBus{}, &collectingSink{})

		stale := draftQuote(t, quoteRef.Add(-24*time.Hour))
		repos.quotes[stale.ID] = *stale

		_, err := service.Sweep(ctx, true)
		require.NoError(t, err)

		again, err := service.Sweep(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Processed)
		assert.Equal(t, 0, again.Transitions)
	})

	t.Run("accepted quotes are never swept", func(t *testing.T) {
		repos := newMemRepos()
		bus := &collectingBus{}
		service := newQuoteService(repos, bus, &collectingSink{})

		q := draftQuote(t, quoteRef.Add(-24*time.Hour))
		require.NoError(t, q.Send())
		require.NoError(t, q.Accept())
		repos.quotes[q.ID] = *q

		summary, err := service.Sweep(ctx, true)
		require.NoError(t, err)

		assert.Equal(t, 0, summary.Processed)
		assert.Equal(t, 0, summary.Transitions)
		assert.Equal(t, billing.QuoteStatusAccepted, repos.quotes[q.ID].Status)
		assert.Empty(t, bus.eventTypes())
	})
}
