package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/probe"
	"github.com/mcpgateway/registry-insights/internal/queue"
	"github.com/mcpgateway/registry-insights/internal/validation"
)

func (h *Handler) ListServers(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	servers, err := h.registry.ListServersByTenant(tenantID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list servers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list servers"})
		return
	}

	// Legacy rows can carry malformed capability blobs. Fall back to an
	// empty object rather than failing the whole listing.
	readCtx := validation.Context{
		Operation: validation.OperationSelect,
		Table:     "servers",
		TenantID:  tenantID,
	}
	for _, s := range servers {
		s.Capabilities = h.validator.SafeValidate(
			validation.FieldServerCapabilities, s.Capabilities, map[string]interface{}{}, readCtx)
		s.Tags = h.validator.SafeValidate(
			validation.FieldServerTags, s.Tags, map[string]interface{}{}, readCtx)
	}

	c.JSON(http.StatusOK, gin.H{
		"servers": servers,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) GetServer(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	serverID := c.Param("id")

	server, err := h.registry.GetServer(serverID, tenantID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}

	c.JSON(http.StatusOK, server)
}

func (h *Handler) GetServerMetrics(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	serverID := c.Param("id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	metrics, err := h.registry.GetServerMetrics(serverID, tenantID, limit)
	if err != nil {
		h.logger.Error("Failed to get server metrics",
			zap.Error(err),
			zap.String("server_id", serverID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// TriggerProbe enqueues an on-demand probe ahead of the scheduled scans.
func (h *Handler) TriggerProbe(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	serverID := c.Param("id")

	server, err := h.registry.GetServer(serverID, tenantID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}

	job := &queue.Job{
		ID:        uuid.New().String(),
		Type:      probe.TypeEndpoint,
		ServerID:  server.ID,
		TenantID:  tenantID,
		Priority:  1,
		CreatedAt: time.Now(),
	}

	if err := h.queue.Push(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to enqueue probe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue probe"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}
