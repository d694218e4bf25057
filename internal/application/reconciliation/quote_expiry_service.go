package reconciliation

import (
	"context"
	"fmt"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteExpiryService sweeps quotes past their validity date into EXPIRED.
// Expiry is terminal, so the sweep only ever notifies on the run that makes
// the transition; re-runs find nothing expirable.
type QuoteExpiryService struct {
	scope    TransactionScope
	eventBus shared.EventPublisher
	notifier *Notifier
	clock    shared.Clock
	logger   *zap.Logger
}

// NewQuoteExpiryService creates a new QuoteExpiryService
func NewQuoteExpiryService(
	scope TransactionScope,
	eventBus shared.EventPublisher,
	notifier *Notifier,
	clock shared.Clock,
	logger *zap.Logger,
) *QuoteExpiryService {
	return &QuoteExpiryService{
		scope:    scope,
		eventBus: eventBus,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// Sweep expires every non-terminal quote whose validity date has passed.
// When notify is false the transition is still made but no notification is
// handed to the dispatcher.
func (s *QuoteExpiryService) Sweep(ctx context.Context, notify bool) (*RunSummary, error) {
	now := s.clock.Now()
	summary := newRunSummary("reconcile-quote-expiry", now)

	var expirable []billing.Quote
	if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		expirable, err = repos.QuoteRepo().FindExpirable(ctx, now)
		return err
	}); err != nil {
		return nil, fmt.Errorf("listing expirable quotes: %w", err)
	}

	for i := range expirable {
		id := expirable[i].ID
		summary.Processed++

		expired, err := s.expireOne(ctx, id, notify, summary)
		if err != nil {
			if !isPerDocumentFailure(err) {
				return nil, fmt.Errorf("expiring quote %s: %w", id, err)
			}
			s.logger.Warn("skipping quote after per-document failure",
				zap.String("quote_id", id.String()),
				zap.Error(err),
			)
			summary.Skipped++
			continue
		}
		if expired {
			summary.Transitions++
		}
	}

	s.logger.Info("quote expiry sweep completed", summary.finish(s.clock.Now()).Fields()...)
	return summary, nil
}

func (s *QuoteExpiryService) expireOne(ctx context.Context, id uuid.UUID, notify bool, summary *RunSummary) (bool, error) {
	now := s.clock.Now()
	var expired bool
	var events []shared.DomainEvent
	var quoteNumber string

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		q, err := repos.QuoteRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		// Revalidated under the row lock: an interactive accept/reject
		// between listing and locking wins over the sweep.
		if !q.ExpireIfPast(now) {
			return nil
		}

		if err := repos.QuoteRepo().Save(ctx, q); err != nil {
			return err
		}

		expired = true
		quoteNumber = q.QuoteNumber
		events = q.GetDomainEvents()
		q.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return false, err
	}
	if !expired {
		return false, nil
	}

	if len(events) > 0 {
		if pubErr := s.eventBus.Publish(ctx, events...); pubErr != nil {
			s.logger.Error("failed to publish quote events", zap.Error(pubErr))
		}
	}

	if notify {
		sent, err := s.notifier.Notify(ctx, shared.Notification{
			EventType: "billing.quote.expired",
			EntityID:  id,
			Payload: map[string]any{
				"quote_number": quoteNumber,
			},
		})
		if err != nil {
			s.logger.Error("failed to emit quote expiry notification",
				zap.String("quote_id", id.String()),
				zap.Error(err),
			)
		} else if sent {
			summary.Notifications++
		}
	}

	return true, nil
}
