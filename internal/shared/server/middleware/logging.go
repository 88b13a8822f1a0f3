package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"study-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request. Handlers may set "documentId",
// "generationKind" and "cacheHit" on the context to enrich the line.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if v := c.GetString("documentId"); v != "" {
			fields["document_id"] = v
		}
		if v := c.GetString("generationKind"); v != "" {
			fields["kind"] = v
		}
		if v, ok := c.Get("cacheHit"); ok {
			fields["cache_hit"] = v
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			fields["trace_id"] = sc.TraceID().String()
		}
		telemetry.Info("request.complete", fields)
	}
}
