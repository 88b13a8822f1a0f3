package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"study-backend/internal/shared/server/respond"
	"study-backend/internal/shared/telemetry"
)

// Recovery turns a panic in a handler into a 500. Generation handlers tag
// the context with the document and kind, which end up in the log line.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"panic":      rec,
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
			}
			if id := c.GetString("documentId"); id != "" {
				fields["document_id"] = id
			}
			if kind := c.GetString("generationKind"); kind != "" {
				fields["kind"] = kind
			}
			telemetry.Error("http.panic", fields)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error")
		}()
		c.Next()
	}
}
