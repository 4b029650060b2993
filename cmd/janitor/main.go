package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/metrics"
	"github.com/mcpgateway/registry-insights/internal/retention"
)

// The janitor owns the periodic housekeeping: retention cleanup and
// materialized view refresh. It runs as its own process so a long DELETE
// never competes with API traffic for pool connections.
func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	database, err := db.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	repo := db.NewRepository(database)
	cleaner := retention.NewCleaner(database, cfg.Retention, logger)
	collector := metrics.NewCollector(cfg.RemoteWrite, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go runCleanup(ctx, cleaner, collector, cfg.Janitor.CleanupInterval, logger)
	go runViewRefresh(ctx, repo, cfg.Janitor.ViewRefreshInterval, logger)
	go collector.StartRemoteWrite(ctx)

	logger.Info("Janitor started",
		zap.Duration("cleanup_interval", cfg.Janitor.CleanupInterval),
		zap.Duration("view_refresh_interval", cfg.Janitor.ViewRefreshInterval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down janitor...")
	cancel()
	logger.Info("Janitor exited")
}

func runCleanup(ctx context.Context, cleaner *retention.Cleaner, collector *metrics.Collector, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			results, err := cleaner.Run()
			if err != nil {
				logger.Error("Retention cleanup failed", zap.Error(err))
				continue
			}
			collector.RecordCleanup(results)
		}
	}
}

func runViewRefresh(ctx context.Context, repo *db.Repository, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.RefreshMaterializedViews(); err != nil {
				logger.Error("Failed to refresh materialized views", zap.Error(err))
			}
		}
	}
}
