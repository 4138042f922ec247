package main

import (
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
	"github.com/kingrain94/tenant-auth-api/internal/repository/opensearch"
	"github.com/kingrain94/tenant-auth-api/internal/service/queue"
	"github.com/kingrain94/tenant-auth-api/internal/worker"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))
	workerConfig := config.DefaultEventWorkerConfig()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	osConfig := config.DefaultOpenSearchConfig()
	osClient, err := osConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to OpenSearch", err)
	}
	osRepo := opensearch.NewRepository(osClient, osConfig)

	appLogger.Info("OpenSearch connection established for event worker")

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	appLogger.Info("SQS connection established for event worker")

	sqsWorker := worker.NewSQSWorker(
		sqsService,
		osRepo,
		collector,
		appLogger,
		workerConfig.WorkerCount,
		workerConfig.PollInterval,
	)

	metricsServer := &http.Server{Addr: workerConfig.MetricsAddr, Handler: metrics.Handler(registry)}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server failed", err)
		}
	}()

	sqsWorker.Start()
	appLogger.Info("SQS worker started")

	// Wait for interrupt signal to gracefully shutdown the worker
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down worker...")
	sqsWorker.Stop()
	_ = metricsServer.Close()
	appLogger.Info("Worker stopped")
	_ = appLogger.Sync()
}
