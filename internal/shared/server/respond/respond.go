// Package respond writes the JSON bodies shared by every handler.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-backend/internal/shared/telemetry"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error logs and sends a standardized error response.
func Error(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if documentID := c.GetString("documentId"); documentID != "" {
		fields["document_id"] = documentID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// OK writes payload with 200. Generation handlers record whether the result
// came from the document cache; that is exposed as X-Cache.
func OK(c *gin.Context, payload any) {
	if hit, ok := c.Get("cacheHit"); ok {
		if cached, _ := hit.(bool); cached {
			c.Header("X-Cache", "HIT")
		} else {
			c.Header("X-Cache", "MISS")
		}
	}
	c.JSON(http.StatusOK, payload)
}
