package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunCleanup applies every retention policy once and reports the deleted
// row counts. The janitor runs the same routine on a timer; this endpoint
// exists for operators who need to reclaim space now.
func (h *Handler) RunCleanup(c *gin.Context) {
	results, err := h.cleaner.Run()
	if err != nil {
		h.logger.Error("Retention cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup failed"})
		return
	}

	h.metrics.RecordCleanup(results)

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) GetSchemaHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.validator.SchemaHealth())
}
