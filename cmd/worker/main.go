package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/metrics"
	"github.com/mcpgateway/registry-insights/internal/probe"
	"github.com/mcpgateway/registry-insights/internal/queue"
	"github.com/mcpgateway/registry-insights/internal/scheduler"
	"github.com/mcpgateway/registry-insights/internal/storage/redis"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Database
	database, err := db.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// Redis queue
	cache := redis.NewClient(cfg.Redis.URL)
	defer cache.Close()

	jobQueue := queue.NewRedisQueue(cache.Client)

	collector := metrics.NewCollector(cfg.RemoteWrite, logger)

	// Probe runners
	probers := map[string]probe.Runner{
		probe.TypeEndpoint: probe.NewEndpointProber(cfg.Probe, cfg.Scheduler.ProbeTimeout),
		probe.TypeDNS:      probe.NewDNSProber(cfg.Probe, cfg.Scheduler.ProbeTimeout),
		probe.TypeDomain:   probe.NewDomainProber(cfg.Probe),
	}

	// One limiter shared by the pool caps the total outbound probe rate
	limiter := rate.NewLimiter(rate.Limit(cfg.Probe.RatePerSecond), cfg.Probe.Burst)

	ctx, cancel := context.WithCancel(context.Background())

	sched := scheduler.NewScheduler(repo, jobQueue, collector, logger, cfg)
	go sched.Start(ctx)

	for i := 0; i < cfg.Scheduler.WorkerCount; i++ {
		worker := scheduler.NewWorker(i, repo, jobQueue, probers, limiter, collector, logger)
		go worker.Start(ctx)
	}

	go collector.StartRemoteWrite(ctx)

	logger.Info("Worker started", zap.Int("worker_count", cfg.Scheduler.WorkerCount))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	logger.Info("Worker exited")
}
