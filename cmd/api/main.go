package main

// @title Heritage Sites Service API
// @version 1.0.0
// @description Сервис локального кеша объектов культурного наследия с двусторонней синхронизацией против удалённого документного хранилища.
// @description
// @description Основные возможности:
// @description - Чтение кеша сайтов с best-effort подтягиванием удалённой коллекции
// @description - Полная двусторонняя синхронизация (сайты, избранное, посещённое)
// @description - Текстовый поиск по кешу
// @description - Редактирование и пересчёт nearby-списков с геодистанциями
// @description - CRUD сайтов для админ-панели

// @contact.name API Support
// @contact.email support@heritage-sites-service.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/heritage-sites-service/docs/swagger"
	"github.com/heritage-sites-service/internal/config"
	httpDelivery "github.com/heritage-sites-service/internal/delivery/http"
	"github.com/heritage-sites-service/internal/delivery/http/handler"
	"github.com/heritage-sites-service/internal/infrastructure/sitestore"
	"github.com/heritage-sites-service/internal/pkg/logger"
	"github.com/heritage-sites-service/internal/repository/cache"
	"github.com/heritage-sites-service/internal/repository/postgres"
	redisRepo "github.com/heritage-sites-service/internal/repository/redis"
	"github.com/heritage-sites-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Heritage Sites Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("remote_base_url", cfg.Remote.BaseURL),
	)

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
	log.Info("PostgreSQL connected")

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
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	siteRepo := postgres.NewSiteRepository(db)
	userSiteRepo := postgres.NewUserSiteRepository(db)
	appStateRepo := cache.NewAppStateRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	remoteRepo := sitestore.NewClient(&cfg.Remote, log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	syncUC := usecase.NewSyncUseCase(
		siteRepo,
		userSiteRepo,
		remoteRepo,
		appStateRepo,
		log,
	)

	siteUC := usecase.NewSiteUseCase(
		siteRepo,
		userSiteRepo,
		streamRepo,
		log,
	)

	nearbyUC := usecase.NewNearbyUseCase(
		siteRepo,
		streamRepo,
		log,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	siteHandler := handler.NewSiteHandler(siteUC, syncUC, log)
	userSitesHandler := handler.NewUserSitesHandler(siteUC, log)
	syncHandler := handler.NewSyncHandler(syncUC, log)
	nearbyHandler := handler.NewNearbyHandler(nearbyUC, siteUC, log)

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		siteHandler,
		userSitesHandler,
		syncHandler,
		nearbyHandler,
	)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
