package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/metrics"
	"github.com/mcpgateway/registry-insights/internal/probe"
	"github.com/mcpgateway/registry-insights/internal/queue"
)

type Worker struct {
	id      int
	repo    *db.Repository
	queue   *queue.RedisQueue
	probers map[string]probe.Runner
	limiter *rate.Limiter
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewWorker builds a probe worker. The limiter is shared across workers
// so the pool as a whole respects the outbound probe rate.
func NewWorker(id int, repo *db.Repository, q *queue.RedisQueue, probers map[string]probe.Runner, limiter *rate.Limiter, metrics *metrics.Collector, logger *zap.Logger) *Worker {
	return &Worker{
		id:      id,
		repo:    repo,
		queue:   q,
		probers: probers,
		limiter: limiter,
		metrics: metrics,
		logger:  logger.With(zap.Int("worker_id", id)),
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started")

	for {
		if ctx.Err() != nil {
			w.logger.Info("Worker stopped")
			return
		}

		job, err := w.queue.Pop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, queue.ErrTimeout) || ctx.Err() != nil {
				continue
			}
			w.logger.Error("Failed to pop probe job", zap.Error(err))
			continue
		}

		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *queue.Job) {
	prober, ok := w.probers[job.Type]
	if !ok {
		w.logger.Error("No prober for job type", zap.String("probe_type", job.Type))
		return
	}

	server, err := w.repo.GetServerByID(job.ServerID)
	if err != nil {
		// Server deleted between scheduling and execution
		w.logger.Debug("Skipping probe for missing server",
			zap.String("server_id", job.ServerID),
			zap.Error(err),
		)
		return
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	metric := prober.Probe(server)
	metric.ID = uuid.New().String()
	metric.CheckedAt = db.UTCNow()

	// Only the endpoint probe drives the health columns; dns/domain
	// results are diagnostics kept in server_metrics.
	updateHealth := job.Type == probe.TypeEndpoint

	if err := w.repo.SaveProbeResult(metric, updateHealth); err != nil {
		w.logger.Error("Failed to save probe result",
			zap.Error(err),
			zap.String("server_id", server.ID),
			zap.String("probe_type", job.Type),
		)
		return
	}

	w.metrics.RecordProbe(metric, server)

	if metric.HealthStatus != db.HealthStatusHealthy {
		w.logger.Warn("Probe found server not healthy",
			zap.String("server_id", server.ID),
			zap.String("server_name", server.Name),
			zap.String("probe_type", job.Type),
			zap.String("health_status", string(metric.HealthStatus)),
			zap.String("error", metric.Error),
		)
	}
}
