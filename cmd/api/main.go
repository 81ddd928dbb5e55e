package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/everyday-christian-tagger/internal/config"
	"github.com/everyday-christian-tagger/internal/handlers"
	"github.com/everyday-christian-tagger/internal/logging"
	"github.com/everyday-christian-tagger/internal/middleware"
	"github.com/everyday-christian-tagger/internal/repository/sqlstore"
	"github.com/everyday-christian-tagger/internal/services"
	"github.com/everyday-christian-tagger/internal/themes"
	dbconfig "github.com/everyday-christian-tagger/pkg/schema/config"
	"github.com/everyday-christian-tagger/pkg/schema/db"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Get configuration
	cfg := config.GetConfig()

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Keyword table and classifier
	table, err := themes.LoadTable(cfg.KeywordsPath)
	if err != nil {
		logger.Fatal("Failed to load keyword table", zap.String("path", cfg.KeywordsPath), zap.Error(err))
	}
	policy, err := themes.ParseOverridePolicy(cfg.OverridePolicy)
	if err != nil {
		logger.Fatal("Invalid override policy", zap.Error(err))
	}
	classifier := themes.NewClassifier(table, policy)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Initialize the verse database
	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	logger.Info("Database initialization complete", zap.String("driver", dbconfig.GetConfig().Driver))

	// Create repositories and services
	store := sqlstore.NewStore(db.Get())
	mappingSvc := services.NewMappingService(store, table, logger)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	healthHandler := handlers.NewHealthHandler(store, dbconfig.GetConfig().Driver)
	healthHandler.RegisterRoutes(api)

	themeHandler := handlers.NewThemeHandler(classifier, mappingSvc, store)
	themeHandler.RegisterRoutes(api)

	// Root health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("Starting server",
			zap.String("name", cfg.APITitle),
			zap.String("version", cfg.APIVersion),
			zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		logger.Error("Error closing database", zap.Error(err))
	}

	logger.Info("Server stopped")
}
