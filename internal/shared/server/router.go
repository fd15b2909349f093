package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuscore-backend/internal/analyses"
	"docuscore-backend/internal/documents"
	"docuscore-backend/internal/export"
	"docuscore-backend/internal/services/health"
	"docuscore-backend/internal/shared/config"
	"docuscore-backend/internal/shared/metrics"
	"docuscore-backend/internal/shared/server/middleware"
	"docuscore-backend/internal/shared/server/respond"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupPolling = "POLLING"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	DocumentHandler *documents.Handler
	AnalysisHandler *analyses.Handler
	ExportHandler   *export.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	api.GET("/connectivity", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Connectivity(c.Request.Context()))
	})

	session := api.Group("")
	session.Use(
		middleware.Session(),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupDefault: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
				rateGroupPolling: {Rate: deps.Config.RateLimitRPS * 4, Burst: deps.Config.RateLimitBurst * 2},
			},
		}),
	)
	deps.DocumentHandler.RegisterRoutes(session)
	deps.AnalysisHandler.RegisterRoutes(session)
	deps.ExportHandler.RegisterRoutes(session)

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/documents/:id/analysis" {
		return rateGroupPolling
	}
	return rateGroupDefault
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
