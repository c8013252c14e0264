package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/pharmalink/backend/internal/application/catalog"
	"github.com/pharmalink/backend/internal/domain/catalog"
)

// RedisSettingsCache caches organization settings in Redis. All failures
// are soft: a broken cache degrades to repository reads.
type RedisSettingsCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

var _ catalogapp.SettingsCache = (*RedisSettingsCache)(nil)

// NewRedisSettingsCache creates a settings cache on an existing client
func NewRedisSettingsCache(client *redis.Client, logger *zap.Logger) *RedisSettingsCache {
	return &RedisSettingsCache{
		client:    client,
		keyPrefix: "org:settings:",
		logger:    logger,
	}
}

func (c *RedisSettingsCache) key(tenantID, organizationID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", c.keyPrefix, tenantID, organizationID)
}

// GetSettings returns cached settings, or false on miss or cache failure
func (c *RedisSettingsCache) GetSettings(ctx context.Context, tenantID, organizationID uuid.UUID) (*catalog.OrganizationSettings, bool) {
	data, err := c.client.Get(ctx, c.key(tenantID, organizationID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("settings cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var settings catalog.OrganizationSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		c.logger.Warn("settings cache entry corrupt, dropping",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		c.client.Del(ctx, c.key(tenantID, organizationID))
		return nil, false
	}
	return &settings, true
}

// SetSettings stores settings with the given TTL
func (c *RedisSettingsCache) SetSettings(ctx context.Context, tenantID, organizationID uuid.UUID, settings catalog.OrganizationSettings, ttl time.Duration) {
	data, err := json.Marshal(settings)
	if err != nil {
		c.logger.Warn("settings cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(tenantID, organizationID), data, ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", zap.Error(err))
	}
}

// InvalidateSettings drops the cached settings for one organization
func (c *RedisSettingsCache) InvalidateSettings(ctx context.Context, tenantID, organizationID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(tenantID, organizationID)).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", zap.Error(err))
	}
}
