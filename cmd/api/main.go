package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kingrain94/tenant-auth-api/docs"
	"github.com/kingrain94/tenant-auth-api/internal/api"
	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/middleware"
	"github.com/kingrain94/tenant-auth-api/internal/password"
	"github.com/kingrain94/tenant-auth-api/internal/repository/composite"
	"github.com/kingrain94/tenant-auth-api/internal/revocation"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/service/pubsub"
	"github.com/kingrain94/tenant-auth-api/internal/service/queue"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/internal/token"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// @title           Tenant Auth API
// @version         1.0
// @description     Multi-tenant authentication and tenant-isolated resource API.

// @host      localhost:10000
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	filter := tenancy.NewFilter(
		tenancy.WithLogger(appLogger),
		tenancy.WithFailClosedHook(collector.RecordTenantFailClosed),
	)
	dbConnections, err := config.NewDatabaseConnections(filter)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	appLogger.Info("Database connections established - writer and reader connected")

	osConfig := config.DefaultOpenSearchConfig()
	osClient, err := osConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to OpenSearch", err)
	}

	redisClient, err := config.DefaultRedisConfig().GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	revocations, err := revocation.New(cfg.Revocation, redisClient,
		revocation.WithLogger(appLogger),
		revocation.WithMetrics(collector),
	)
	if err != nil {
		appLogger.Fatal("Failed to set up token revocation", err)
	}

	// memory backends of several instances stay in sync over redis pub/sub
	if cfg.Revocation.Broadcast && cfg.Revocation.Backend == revocation.BackendMemory {
		redisPubSub := pubsub.NewRedisPubSub(redisClient, appLogger)
		broadcast := pubsub.NewBroadcastList(revocations, redisPubSub, appLogger)
		if err := redisPubSub.Subscribe(ctx, broadcast.Apply); err != nil {
			appLogger.Fatal("Failed to subscribe to revocations", err)
		}
		defer redisPubSub.Close()
		revocations = broadcast
	}

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	codec, err := token.NewCodec(token.Config{
		Secret: []byte(cfg.JWTSecretKey),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.AccessTokenTTL,
	})
	if err != nil {
		appLogger.Fatal("Failed to create token codec", err)
	}

	repo := composite.NewCompositeRepository(dbConnections, osClient, osConfig)

	// Initialize services
	hasher := password.NewHasher(cfg.BcryptCost)
	refreshTokens := service.NewRefreshTokenService(repo, cfg.RefreshTokenTTL)
	securityEvents := service.NewSecurityEventService(repo, sqsService, collector, appLogger)
	clientService := service.NewClientService(repo, nil)
	services := api.Services{
		Auth:          service.NewAuthService(repo, codec, refreshTokens, revocations, hasher, securityEvents, collector, appLogger),
		User:          service.NewUserService(repo, hasher, refreshTokens, nil, securityEvents, appLogger),
		Tenant:        service.NewTenantService(repo, nil),
		Client:        clientService,
		Location:      service.NewLocationService(repo, clientService, nil),
		SecurityEvent: securityEvents,
	}

	// Initialize middleware
	pipeline := service.NewPipeline(repo, codec, revocations, collector, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(pipeline, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient, cfg, appLogger)
	validationMiddleware := middleware.NewValidationMiddleware(appLogger)

	server := api.NewServer(cfg, services, authMiddleware, rateLimitMiddleware, validationMiddleware)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(
		middleware.RequestID(appLogger),
		middleware.Metrics(collector),
		middleware.TenantScope(middleware.DefaultSkipList),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.ServerPort)
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	server.SetupRoutes(apiGroup)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server exiting")
	_ = appLogger.Sync()
}
