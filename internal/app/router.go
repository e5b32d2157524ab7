package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kidpech/logviewer/internal/app/diagnostics"
	"github.com/kidpech/logviewer/internal/app/middleware"
	"github.com/kidpech/logviewer/internal/config"
	"github.com/kidpech/logviewer/internal/infrastructure/ratelimit"
	"github.com/kidpech/logviewer/pkg/response"
)

// RouterDeps aggregates HTTP dependencies.
type RouterDeps struct {
	Config      *config.Config
	Diagnostics *diagnostics.Handler
	Logger      *zap.Logger
	Limiter     ratelimit.Limiter
}

// NewRouter builds the gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// /logs/ is a different path, not an alias for /logs.
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Config != nil {
		r.Use(middleware.CORS(deps.Config.Cors))
	}
	if deps.Limiter != nil {
		r.Use(middleware.RateLimit(deps.Limiter))
	}
	r.Use(middleware.RequestLogger(deps.Logger))

	deps.Diagnostics.RegisterPublic(r)
	if deps.Config == nil || deps.Config.Monitoring.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.NoRoute(response.NotFound)

	return r
}
