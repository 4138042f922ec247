package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/internal/worker"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))
	sweepConfig := config.DefaultSweepConfig()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	dbConnections, err := config.NewDatabaseConnections(tenancy.NewFilter(
		tenancy.WithLogger(appLogger),
		tenancy.WithFailClosedHook(collector.RecordTenantFailClosed),
	))
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", err)
	}
	defer dbConnections.Close()

	pgRepo := postgres.NewPostgresRepository(dbConnections)

	var archiver worker.Archiver
	if sweepConfig.Archive {
		s3Config := config.DefaultS3Config()
		s3Client, err := s3Config.GetClient(context.Background())
		if err != nil {
			appLogger.Fatal("Failed to create S3 client", err)
		}
		archiver = worker.NewS3Archiver(s3Client, s3Config, appLogger)
		appLogger.Infof("Archiving purged refresh tokens to s3://%s/%s", s3Config.BucketName, s3Config.Prefix)
	}

	cleanupWorker := worker.NewCleanupWorker(
		pgRepo.RefreshToken(),
		archiver,
		collector,
		appLogger,
		sweepConfig.WorkerCount,
		sweepConfig.BatchSize,
		sweepConfig.Interval,
	)

	metricsServer := &http.Server{Addr: sweepConfig.MetricsAddr, Handler: metrics.Handler(registry)}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server failed", err)
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cleanupWorker.Start()

	<-sigChan
	appLogger.Info("Shutting down cleanup worker...")

	cleanupWorker.Stop()
	_ = metricsServer.Close()
	appLogger.Info("Cleanup worker stopped")
	_ = appLogger.Sync()
}
