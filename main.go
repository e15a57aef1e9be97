package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/config"
	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/handlers"
	"github.com/darab-cement/cms-service/internal/metrics"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/repositories/casdoor"
	"github.com/darab-cement/cms-service/internal/repositories/postgres"
	"github.com/darab-cement/cms-service/internal/services"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/utils"
	"github.com/darab-cement/cms-service/internal/validator"
	"github.com/darab-cement/cms-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	// One cache manager so repository reads and service invalidations share generations
	cacheManager := cache.NewCacheManager(redisClient)

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		Cache:       cacheManager,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	appMetrics := metrics.New()

	store, err := newFileStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	store = storage.Instrument(store, appMetrics)

	publisher, err := events.NewWatermillPublisher(events.PublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		TopicPrefix: cfg.Kafka.TopicPrefix,
		Observer:    appMetrics,
	}, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	var identity repositories.IdentityRepository
	if cfg.Casdoor.Enabled() {
		identity = casdoor.NewIdentityCasdoor(cfg.Casdoor)
		logger.Info("Casdoor SSO enabled", "endpoint", cfg.Casdoor.Endpoint)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repoManager.GetRepository(),
		Cache:     cacheManager,
		Logger:    slogLogger,
		Validator: validator.New(),
		Publisher: publisher,
		Store:     store,
		Observer:  appMetrics,
		Identity:  identity,
		JWT:       cfg.JWT,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	seed(cfg, serviceManager, logger)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, appMetrics, cfg.CORSOrigins)

	handlerManager := handlers.NewHandlerManager(serviceManager, logger, appMetrics, cfg.Upload)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}

// newFileStore prefers Cloudinary when CLOUDINARY_URL is set and falls back to the upload directory
func newFileStore(cfg *config.Config, logger utils.Logger) (storage.FileStore, error) {
	if cfg.CloudinaryURL != "" {
		store, err := storage.NewCloudinaryStore(cfg.CloudinaryURL, "darab-cms")
		if err != nil {
			return nil, err
		}
		logger.Info("Using Cloudinary file storage")
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Using local file storage", "dir", cfg.Upload.Dir)
	return store, nil
}

func seed(cfg *config.Config, serviceManager services.ServiceManager, logger utils.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := serviceManager.Auth().SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Error("Failed to seed admin account", "error", err)
		}
	}

	if cfg.SeedSupplierPoll {
		poll, err := serviceManager.Poll().SeedSupplierPoll(ctx)
		if err != nil {
			logger.Error("Failed to seed supplier poll", "error", err)
			return
		}
		if poll != nil {
			logger.Info("Supplier poll ready", "poll_id", poll.ID)
		}
	}
}
