package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/config"
	"github.com/heritage-sites-service/internal/infrastructure/sitestore"
	"github.com/heritage-sites-service/internal/pkg/logger"
	"github.com/heritage-sites-service/internal/repository/cache"
	"github.com/heritage-sites-service/internal/repository/postgres"
	redisRepo "github.com/heritage-sites-service/internal/repository/redis"
	"github.com/heritage-sites-service/internal/usecase"
	"github.com/heritage-sites-service/internal/worker"
	"github.com/heritage-sites-service/internal/worker/sites"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Sync.WorkerEnabled {
		fmt.Println("Sync worker is disabled in configuration. Set SYNC_WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Heritage Sites Sync Worker")
	log.Info("Configuration loaded",
		zap.Duration("sync_interval", cfg.Sync.Interval),
		zap.String("consumer_group", cfg.Sync.ConsumerGroup),
		zap.String("remote_base_url", cfg.Remote.BaseURL))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	siteRepo := postgres.NewSiteRepository(db)
	userSiteRepo := postgres.NewUserSiteRepository(db)
	appStateRepo := cache.NewAppStateRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	remoteRepo := sitestore.NewClient(&cfg.Remote, log)

	// 6. Initialize use cases
	syncUC := usecase.NewSyncUseCase(
		siteRepo,
		userSiteRepo,
		remoteRepo,
		appStateRepo,
		log,
	)

	nearbyUC := usecase.NewNearbyUseCase(
		siteRepo,
		streamRepo,
		log,
	)

	// 7. Initialize workers
	syncWorker := sites.NewSiteSyncWorker(syncUC, cfg.Sync.Interval, log)
	nearbyWorker := sites.NewNearbyRecalcWorker(
		streamRepo,
		nearbyUC,
		cfg.Sync.ConsumerGroup,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(syncWorker)
	workerManager.Register(nearbyWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start workers
	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Cancel context to stop workers
	cancel()

	// Stop worker manager
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
