package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores already-delivered notification keys so that a
// re-run of an idempotent procedure does not re-emit the same notification.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for notification deduplication
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed keys. Classification keys embed
	// the calendar day, so a TTL of 48h comfortably covers same-day re-runs.
	TTL time.Duration

	// Enabled determines whether deduplication is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default deduplication configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     48 * time.Hour,
		Enabled: true,
	}
}
