package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheInvalidator implements the application layer's
// CacheInvalidator on Redis. It deletes twice: once immediately and
// once after the delay, so a reader that loaded the pre-mutation value
// mid-flight cannot leave it cached.
type RedisCacheInvalidator struct {
	client *redis.Client
	delay  time.Duration
	logger *zap.Logger
}

// NewRedisCacheInvalidator creates a new invalidator. A zero delay
// skips the second delete.
func NewRedisCacheInvalidator(client *redis.Client, delay time.Duration, logger *zap.Logger) *RedisCacheInvalidator {
	return &RedisCacheInvalidator{
		client: client,
		delay:  delay,
		logger: logger,
	}
}

// Invalidate deletes the keys. Failures are logged and swallowed;
// invalidation is an optimization and never fails the mutation that
// triggered it.
func (i *RedisCacheInvalidator) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	i.delete(ctx, keys)

	if i.delay <= 0 {
		return
	}
	// the second delete outlives the request context
	time.AfterFunc(i.delay, func() {
		deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		i.delete(deleteCtx, keys)
	})
}

func (i *RedisCacheInvalidator) delete(ctx context.Context, keys []string) {
	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		i.logger.Warn("cache invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

// NoopCacheInvalidator satisfies CacheInvalidator when caching is
// disabled.
type NoopCacheInvalidator struct{}

// Invalidate does nothing
func (NoopCacheInvalidator) Invalidate(ctx context.Context, keys ...string) {}
