package handlers

import (
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/analytics"
	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/metrics"
	"github.com/mcpgateway/registry-insights/internal/queue"
	"github.com/mcpgateway/registry-insights/internal/retention"
	"github.com/mcpgateway/registry-insights/internal/storage/redis"
	"github.com/mcpgateway/registry-insights/internal/validation"
)

type Handler struct {
	reports   *analytics.Repository
	registry  *db.Repository
	cleaner   *retention.Cleaner
	cache     *redis.Client
	queue     *queue.RedisQueue
	metrics   *metrics.Collector
	validator *validation.Registry
	logger    *zap.Logger
}

func NewHandler(
	reports *analytics.Repository,
	registry *db.Repository,
	cleaner *retention.Cleaner,
	cache *redis.Client,
	q *queue.RedisQueue,
	metrics *metrics.Collector,
	validator *validation.Registry,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		reports:   reports,
		registry:  registry,
		cleaner:   cleaner,
		cache:     cache,
		queue:     q,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
	}
}
