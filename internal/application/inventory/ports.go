package inventory

import (
	"context"
	"time"
)

// CacheInvalidator removes cached aggregates after a mutation. Invalidation
// is an optimization only; failures are logged and never fail the caller.
type CacheInvalidator interface {
	// Invalidate deletes the keys after a short delay so in-flight readers
	// do not repopulate the cache with the pre-mutation value
	Invalidate(ctx context.Context, keys ...string)
}

// TaskEnqueuer schedules durable background work with at-least-once delivery
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskName string, payload any, countdown time.Duration) error
}

// AlertNotifier reports operational anomalies to the alert channel. Failures
// are swallowed by implementations; alerting never fails a transaction.
type AlertNotifier interface {
	Alert(ctx context.Context, subject, message string)
}
