package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/heritage-sites-service/internal/config"
	"github.com/heritage-sites-service/internal/delivery/http/handler"
	"github.com/heritage-sites-service/internal/delivery/http/middleware"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	siteHandler      *handler.SiteHandler
	userSitesHandler *handler.UserSitesHandler
	syncHandler      *handler.SyncHandler
	nearbyHandler    *handler.NearbyHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	siteHandler *handler.SiteHandler,
	userSitesHandler *handler.UserSitesHandler,
	syncHandler *handler.SyncHandler,
	nearbyHandler *handler.NearbyHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Heritage Sites Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		siteHandler:      siteHandler,
		userSitesHandler: userSitesHandler,
		syncHandler:      syncHandler,
		nearbyHandler:    nearbyHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api := s.app.Group("/api/v1")

	// Site routes
	api.Get("/sites", s.siteHandler.GetAll)
	api.Get("/sites/search", s.siteHandler.Search)
	api.Post("/sites", s.siteHandler.Create)
	api.Get("/sites/:id", s.siteHandler.GetByID)
	api.Put("/sites/:id", s.siteHandler.Update)
	api.Delete("/sites/:id", s.siteHandler.Delete)

	// Nearby routes
	api.Get("/sites/:id/nearby/candidates", s.nearbyHandler.SearchCandidates)
	api.Post("/sites/:id/nearby/recalculate", s.nearbyHandler.Recalculate)
	api.Post("/sites/:id/nearby/recalculate-async", s.nearbyHandler.RequestRecalc)
	api.Post("/sites/:id/nearby/move", s.nearbyHandler.MoveRef)
	api.Post("/sites/:id/nearby", s.nearbyHandler.AddRef)
	api.Delete("/sites/:id/nearby/:refID", s.nearbyHandler.RemoveRef)

	// User favorites / visited
	api.Get("/users/:userID/favorites", s.userSitesHandler.GetFavorites)
	api.Post("/users/:userID/favorites/:siteID", s.userSitesHandler.AddFavorite)
	api.Delete("/users/:userID/favorites/:siteID", s.userSitesHandler.RemoveFavorite)
	api.Get("/users/:userID/visited", s.userSitesHandler.GetVisited)
	api.Post("/users/:userID/visited/:siteID", s.userSitesHandler.AddVisited)
	api.Delete("/users/:userID/visited/:siteID", s.userSitesHandler.RemoveVisited)

	// Sync
	api.Post("/sync", s.syncHandler.TriggerFullSync)
	api.Get("/sync/status", s.syncHandler.Status)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
