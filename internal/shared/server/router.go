package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"study-backend/internal/shared/config"
	"study-backend/internal/shared/metrics"
	"study-backend/internal/shared/server/middleware"
	"study-backend/internal/shared/server/respond"
)

const serviceName = "study-backend"

// RouteRegistrar is implemented by feature handlers.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted on the engine.
type RouterDeps struct {
	Config    config.Config
	Handlers  []RouteRegistrar
	RateLimit *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
// Routes are served both at the root and under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes

	r.Use(
		middleware.RequestID(),
		otelgin.Middleware(serviceName),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Preflight(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:  deps.RateLimit,
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"generate": {
					Rate:  deps.Config.GenerateRateLimitRPS,
					Burst: deps.Config.GenerateRateLimitBurst,
				},
			},
		}),
	)

	for _, group := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/api")} {
		group.GET("/health", func(c *gin.Context) {
			respond.OK(c, gin.H{"ok": true})
		})
		for _, h := range deps.Handlers {
			if h != nil {
				h.RegisterRoutes(group)
			}
		}
	}

	r.GET("/metrics", metrics.Handler())

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Route not found")
	})

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := strings.TrimPrefix(c.FullPath(), "/api")
	if strings.HasPrefix(path, "/generate/") {
		return "generate"
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
