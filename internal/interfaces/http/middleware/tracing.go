package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmalink/backend/internal/infrastructure/telemetry"
)

// Tracing returns the otelgin server-span middleware followed by an
// enricher that stamps the tenant and correlation ID onto the span.
// Register both in order; the enricher runs inside the span.
func Tracing(serviceName string, enabled bool) []gin.HandlerFunc {
	if !enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		enrichSpan(),
	}
}

func enrichSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if tenantID, ok := GetTenantID(c); ok {
				span.SetAttributes(attribute.String(telemetry.SpanAttrTenantID, tenantID.String()))
			}
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request.id", requestID))
			}
		}
		c.Next()
	}
}
