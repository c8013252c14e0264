package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTenantRouter(cfg TenantConfig) (*gin.Engine, *uuid.UUID) {
	var captured uuid.UUID
	r := gin.New()
	r.Use(Tenant(cfg))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/stocks", func(c *gin.Context) {
		if id, ok := GetTenantID(c); ok {
			captured = id
		}
		c.Status(http.StatusOK)
	})
	return r, &captured
}

func TestTenantMiddleware(t *testing.T) {
	r, captured := newTenantRouter(DefaultTenantConfig())
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks", nil)
	req.Header.Set(TenantHeader, tenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, *captured)
}

func TestTenantMiddlewareMissingHeader(t *testing.T) {
	r, _ := newTenantRouter(DefaultTenantConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stocks", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TENANT")
}

func TestTenantMiddlewareMalformedHeader(t *testing.T) {
	r, _ := newTenantRouter(DefaultTenantConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks", nil)
	req.Header.Set(TenantHeader, "not-a-uuid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantMiddlewareSkipPaths(t *testing.T) {
	r, _ := newTenantRouter(DefaultTenantConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
