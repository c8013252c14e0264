// Package middleware provides the HTTP middleware chain: request IDs,
// tenant resolution, CORS, body limits, metrics and tracing.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pharmalink/backend/internal/interfaces/http/dto"
)

const (
	// TenantHeader carries the tenant on every API request
	TenantHeader = "X-Tenant-ID"
	// TenantIDKey is the gin context key the tenant is stored under
	TenantIDKey = "tenant_id"
)

// TenantConfig controls tenant resolution
type TenantConfig struct {
	// SkipPaths are served without a tenant, e.g. health checks
	SkipPaths []string
}

// DefaultTenantConfig returns the standard skip list
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/ready"},
	}
}

// Tenant extracts and validates the X-Tenant-ID header. Every request
// below /api is tenant-scoped; a missing or malformed header is
// rejected before any handler runs.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeMissingTenant, "X-Tenant-ID header is required"))
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeMissingTenant, "X-Tenant-ID header must be a valid UUID"))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
