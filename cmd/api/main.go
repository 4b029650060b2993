package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/analytics"
	"github.com/mcpgateway/registry-insights/internal/api"
	"github.com/mcpgateway/registry-insights/internal/api/handlers"
	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/metrics"
	"github.com/mcpgateway/registry-insights/internal/queue"
	"github.com/mcpgateway/registry-insights/internal/retention"
	"github.com/mcpgateway/registry-insights/internal/storage/redis"
	"github.com/mcpgateway/registry-insights/internal/validation"
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

	if err := db.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis
	cache := redis.NewClient(cfg.Redis.URL)
	defer cache.Close()

	jobQueue := queue.NewRedisQueue(cache.Client)

	// Wiring
	registry := db.NewRepository(database)
	reports := analytics.NewRepository(database)
	cleaner := retention.NewCleaner(database, cfg.Retention, logger)
	validator := validation.NewRegistry(logger)
	collector := metrics.NewCollector(cfg.RemoteWrite, logger)

	if report := validator.SchemaHealth(); len(report.Missing) > 0 {
		logger.Warn("JSON fields without a registered schema",
			zap.Int("count", len(report.Missing)),
		)
	}

	handler := handlers.NewHandler(reports, registry, cleaner, cache, jobQueue, collector, validator, logger)
	server := api.NewServer(cfg, handler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go collector.StartRemoteWrite(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
