package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsMethods = []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"}
	corsHeaders = []string{
		"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version",
		"Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version",
		"X-Request-Id",
	}
)

// CORS returns the cross-origin policy. A "*" entry (or an empty list)
// allows every origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:              corsMethods,
		AllowHeaders:              corsHeaders,
		ExposeHeaders:             []string{"X-Request-Id"},
		MaxAge:                    10 * time.Minute,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if allowsAll(allowedOrigins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// Preflight answers any OPTIONS request that reached the router with 200
// and no body, including requests without an Origin header.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func allowsAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
