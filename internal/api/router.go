package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/api/handlers"
	"github.com/mcpgateway/registry-insights/internal/api/middleware"
	"github.com/mcpgateway/registry-insights/internal/config"
)

type Server struct {
	Config  *config.Config
	Router  *gin.Engine
	handler *handlers.Handler
}

func NewServer(cfg *config.Config, handler *handlers.Handler, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config:  cfg,
		Router:  router,
		handler: handler,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	h := s.handler

	// Probes and scrape endpoint, unauthenticated
	s.Router.GET("/health", h.Health)
	s.Router.GET("/ready", h.Ready)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes (protected)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret))
	api.Use(middleware.Tenant())

	// Server routes
	{
		api.GET("/servers", h.ListServers)
		api.GET("/servers/:id", h.GetServer)
		api.GET("/servers/:id/metrics", h.GetServerMetrics)
		api.POST("/servers/:id/probe", h.TriggerProbe)
	}

	// Report routes
	{
		api.GET("/reports/server-health", h.GetServerHealthSummary)
		api.GET("/reports/server-ranking", h.GetServerPerformanceRanking)
		api.GET("/reports/request-performance", h.GetRequestPerformanceSummary)
		api.GET("/reports/tenant-usage", h.GetTenantUsageSummary)
		api.GET("/reports/usage-trending", h.GetAPIUsageTrending)
		api.GET("/reports/tools", h.GetToolUsageAnalytics)
		api.GET("/reports/system-health", h.GetSystemHealth)
		api.GET("/reports/circuit-breakers", h.GetCircuitBreakerStatus)
		api.GET("/reports/connection-pools", h.GetConnectionPoolStats)
	}

	// Admin routes
	admin := api.Group("/admin")
	{
		admin.POST("/cleanup", h.RunCleanup)
		admin.GET("/schema-health", h.GetSchemaHealth)
	}
}
