package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/analytics"
)

// GetServerHealthSummary returns the fleet health buckets. The summary is
// cached briefly since every dashboard polls it.
func (h *Handler) GetServerHealthSummary(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var cached analytics.ServerHealthSummary
	if err := h.cache.GetCachedReport(c.Request.Context(), tenantID, "server_health", &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	summary, err := h.reports.ServerHealthSummary()
	if err != nil {
		h.logger.Error("Failed to compute server health summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	h.metrics.RecordHealthSummary(summary)

	if err := h.cache.CacheReport(c.Request.Context(), tenantID, "server_health", summary); err != nil {
		h.logger.Debug("Failed to cache report", zap.Error(err))
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetServerPerformanceRanking(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ranking, err := h.reports.ServerPerformanceRanking(limit)
	if err != nil {
		h.logger.Error("Failed to compute performance ranking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute ranking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"servers": ranking})
}

func (h *Handler) GetRequestPerformanceSummary(c *gin.Context) {
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))

	summary, err := h.reports.RequestPerformanceSummary(hours)
	if err != nil {
		h.logger.Error("Failed to compute request performance summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetTenantUsageSummary(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	summary, err := h.reports.TenantUsageSummary(tenantID)
	if err != nil {
		h.logger.Error("Failed to compute tenant usage summary",
			zap.Error(err),
			zap.String("tenant_id", tenantID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetAPIUsageTrending buckets request counts over time. An unknown
// granularity is a client error, not a silent default.
func (h *Handler) GetAPIUsageTrending(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	granularity := c.DefaultQuery("granularity", "day")

	points, err := h.reports.APIUsageTrending(days, analytics.Granularity(granularity))
	if err != nil {
		var invalid *analytics.InvalidGranularityError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}

		h.logger.Error("Failed to compute usage trending", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *Handler) GetToolUsageAnalytics(c *gin.Context) {
	var serverID *string
	if id := c.Query("server_id"); id != "" {
		serverID = &id
	}

	tools, err := h.reports.ToolUsageAnalytics(serverID)
	if err != nil {
		h.logger.Error("Failed to compute tool usage analytics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

func (h *Handler) GetSystemHealth(c *gin.Context) {
	report := h.reports.SystemHealth()

	status := http.StatusOK
	for _, component := range report {
		if component.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(status, gin.H{"components": report})
}

func (h *Handler) GetCircuitBreakerStatus(c *gin.Context) {
	breakers, err := h.reports.CircuitBreakerStatus()
	if err != nil {
		h.logger.Error("Failed to get circuit breaker status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get breaker status"})
		return
	}

	h.metrics.RecordBreakers(breakers)

	c.JSON(http.StatusOK, gin.H{"circuit_breakers": breakers})
}

func (h *Handler) GetConnectionPoolStats(c *gin.Context) {
	pools, err := h.reports.ConnectionPoolStats()
	if err != nil {
		h.logger.Error("Failed to get connection pool stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get pool stats"})
		return
	}

	h.metrics.RecordPools(pools)

	c.JSON(http.StatusOK, gin.H{"connection_pools": pools})
}
