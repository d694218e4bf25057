package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base interface embedded by aggregate repositories
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Save(ctx context.Context, entity *T) error
}
