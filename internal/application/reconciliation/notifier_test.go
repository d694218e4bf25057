package reconciliation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/domain/shared"
)

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	t.Run("delivers and suppresses by dedup key", func(t *testing.T) {
		sink := &collectingSink{}
		notifier := testNotifier(sink, newMemIdempotencyStore())

		n := shared.Notification{
			EventType: "billing.invoice.due_soon",
			EntityID:  entityID,
			DedupKey:  "billing.invoice:" + entityID.String() + ":due-soon:2026-03-10",
		}

		sent, err := notifier.Notify(ctx, n)
		require.NoError(t, err)
		assert.True(t, sent)

		sent, err = notifier.Notify(ctx, n)
		require.NoError(t, err)
		assert.False(t, sent)

		assert.Equal(t, 1, sink.count())
	})

	t.Run("empty dedup key always delivers", func(t *testing.T) {
		sink := &collectingSink{}
		notifier := testNotifier(sink, newMemIdempotencyStore())

		n := shared.Notification{EventType: "billing.invoice.paid", EntityID: entityID}

		for i := 0; i < 3; i++ {
			sent, err := notifier.Notify(ctx, n)
			require.NoError(t, err)
			assert.True(t, sent)
		}
		assert.Equal(t, 3, sink.count())
	})

	t.Run("disabled dedup delivers duplicates", func(t *testing.T) {
		sink := &collectingSink{}
		store := newMemIdempotencyStore()
		notifier := NewNotifier(sink, store, shared.IdempotencyConfig{TTL: time.Hour, Enabled: false}, zap.NewNop())

		n := shared.Notification{
			EventType: "billing.invoice.due_soon",
			EntityID:  entityID,
			DedupKey:  "some-key",
		}

		for i := 0; i < 2; i++ {
			sent, err := notifier.Notify(ctx, n)
			require.NoError(t, err)
			assert.True(t, sent)
		}
		assert.Equal(t, 2, sink.count())
	})

	t.Run("store failure propagates without delivery", func(t *testing.T) {
		sink := &collectingSink{}
		store := newMemIdempotencyStore()
		store.err = errors.New("redis: connection refused")
		notifier := testNotifier(sink, store)

		sent, err := notifier.Notify(ctx, shared.Notification{
			EventType: "billing.invoice.due_soon",
			EntityID:  entityID,
			DedupKey:  "some-key",
		})
		require.Error(t, err)
		assert.False(t, sent)
		assert.Equal(t, 0, sink.count())
	})

	t.Run("sink failure propagates", func(t *testing.T) {
		sinkErr := errors.New("dispatcher unavailable")
		failing := shared.NotificationSinkFunc(func(context.Context, shared.Notification) error {
			return sinkErr
		})
		notifier := testNotifier(failing, newMemIdempotencyStore())

		sent, err := notifier.Notify(ctx, shared.Notification{EventType: "x", EntityID: entityID})
		assert.ErrorIs(t, err, sinkErr)
		assert.False(t, sent)
	})
}
