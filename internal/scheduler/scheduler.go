package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/metrics"
	"github.com/mcpgateway/registry-insights/internal/probe"
	"github.com/mcpgateway/registry-insights/internal/queue"
)

// diagnosticsInterval spaces out the dns/domain probes: endpoint health
// is checked continuously, DNS and domain expiry drift slowly.
const diagnosticsInterval = 24 * time.Hour

type Scheduler struct {
	repo            *db.Repository
	queue           *queue.RedisQueue
	metrics         *metrics.Collector
	logger          *zap.Logger
	config          *config.Config
	lastDiagnostics time.Time
}

func NewScheduler(repo *db.Repository, q *queue.RedisQueue, metrics *metrics.Collector, logger *zap.Logger, cfg *config.Config) *Scheduler {
	return &Scheduler{
		repo:    repo,
		queue:   q,
		metrics: metrics,
		logger:  logger,
		config:  cfg,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting scheduler",
		zap.Duration("scan_interval", s.config.Scheduler.ScanInterval),
		zap.Duration("probe_interval", s.config.Scheduler.ProbeInterval),
	)

	ticker := time.NewTicker(s.config.Scheduler.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping scheduler")
			return
		case <-ticker.C:
			s.scheduleProbes(ctx)
		}
	}
}

func (s *Scheduler) scheduleProbes(ctx context.Context) {
	servers, err := s.repo.GetServersDueForProbe(int(s.config.Scheduler.ProbeInterval.Seconds()))
	if err != nil {
		s.logger.Error("Failed to get servers due for probe", zap.Error(err))
		return
	}

	diagnostics := time.Since(s.lastDiagnostics) >= diagnosticsInterval
	if diagnostics {
		s.lastDiagnostics = time.Now()
	}

	scheduled := 0
	for _, server := range servers {
		types := []string{probe.TypeEndpoint}
		if diagnostics {
			types = append(types, probe.TypeDNS, probe.TypeDomain)
		}

		for _, probeType := range types {
			job := &queue.Job{
				ID:        uuid.New().String(),
				Type:      probeType,
				ServerID:  server.ID,
				TenantID:  server.TenantID,
				CreatedAt: time.Now(),
			}

			if err := s.queue.Push(ctx, job); err != nil {
				s.logger.Error("Failed to queue probe job",
					zap.Error(err),
					zap.String("server_id", server.ID),
					zap.String("probe_type", probeType),
				)
				continue
			}
			scheduled++
		}
	}

	if size, err := s.queue.Length(ctx); err == nil {
		s.metrics.RecordQueueSize(size)
	}

	if scheduled > 0 {
		s.logger.Debug("Scheduled probes", zap.Int("count", scheduled))
	}
}
