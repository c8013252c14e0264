package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	invapp "github.com/pharmalink/backend/internal/application/inventory"
)

// RedisStockViewCache caches stock read models in Redis. Keys are the
// same ones RedisCacheInvalidator deletes after mutations, so entries
// never outlive the aggregate state they were projected from by more
// than the TTL.
type RedisStockViewCache struct {
	client *redis.Client
	logger *zap.Logger
}

var _ invapp.StockViewCache = (*RedisStockViewCache)(nil)

// NewRedisStockViewCache creates a new RedisStockViewCache
func NewRedisStockViewCache(client *redis.Client, logger *zap.Logger) *RedisStockViewCache {
	return &RedisStockViewCache{
		client: client,
		logger: logger,
	}
}

// Cache failures are soft on both paths: a miss is returned instead of
// an error, and a failed write leaves the caller serving from the
// repository.

// Get returns the cached view, if present
func (c *RedisStockViewCache) Get(ctx context.Context, key string) (*invapp.StockView, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stock view cache read failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var view invapp.StockView
	if err := json.Unmarshal(data, &view); err != nil {
		c.logger.Warn("corrupt stock view cache entry, dropping",
			zap.String("key", key),
			zap.Error(err),
		)
		c.client.Del(ctx, key)
		return nil, false
	}
	return &view, true
}

// Set stores the view under the key with the given TTL
func (c *RedisStockViewCache) Set(ctx context.Context, key string, view *invapp.StockView, ttl time.Duration) {
	data, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("stock view cache encode failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("stock view cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
