package credit

import (
	"context"

	"github.com/finoffice/backend/internal/domain/shared"
)

// Repository provides persistence for the Credit aggregate, installments
// included. Loading a credit always loads its full schedule.
type Repository interface {
	shared.Repository[Credit]
	// FindSweepable returns credits in ACTIVE or OVERDUE status, ordered by id
	FindSweepable(ctx context.Context) ([]Credit, error)
}
