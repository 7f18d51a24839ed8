package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evacurves/storefront-backend-go/cache"
	"github.com/evacurves/storefront-backend-go/config"
	"github.com/evacurves/storefront-backend-go/database"
	"github.com/evacurves/storefront-backend-go/handlers"
	"github.com/evacurves/storefront-backend-go/logger"
	"github.com/evacurves/storefront-backend-go/metrics"
	customMiddleware "github.com/evacurves/storefront-backend-go/middleware"
	"github.com/evacurves/storefront-backend-go/repository"
	"github.com/evacurves/storefront-backend-go/repository/memory"
	"github.com/evacurves/storefront-backend-go/repository/mongorepo"
	"github.com/evacurves/storefront-backend-go/routes"
	"github.com/evacurves/storefront-backend-go/services"
	"github.com/evacurves/storefront-backend-go/utils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding, cfg.IsDevelopment())
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	ctx := context.Background()

	// Connect to the store
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	if err := services.Seed(ctx, store, services.SeedConfig{
		AdminName:     cfg.AdminName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, log); err != nil {
		log.Fatal("Failed to seed store", zap.Error(err))
	}

	// Optional Redis cache for settings and the active hero
	var c cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("Redis connection failed, continuing without cache", zap.Error(err))
		} else {
			log.Info("Redis connected", zap.String("addr", cfg.RedisAddr))
			c = rc
			defer rc.Close()
		}
	}

	m := metrics.New()
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	reviews := services.NewReviewService(store, log, m)
	users := services.NewUserService(store, tokens, log)
	h := &handlers.Handler{
		Orders:     services.NewOrderService(store, log, m, cfg.StrictOrderTransitions),
		Catalog:    services.NewCatalogService(store, reviews, log),
		Reviews:    reviews,
		Categories: services.NewCategoryService(store, log),
		Users:      users,
		Settings:   services.NewSettingsService(store, c, cfg.CacheTTL, log),
		Heroes:     services.NewHeroService(store, c, cfg.CacheTTL, log),
		Ping:       store.Ping,
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = customMiddleware.ErrorHandler(log, cfg.IsDevelopment())

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(customMiddleware.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(m.Middleware())
	e.Use(middleware.ContextTimeout(cfg.RequestTimeout))

	routes.SetupRoutes(e, h, users, m)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.Addr()), zap.String("driver", cfg.DBDriver))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Store, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("Using the in-memory store; data is lost on restart")
		return memory.New().Repositories(), nil
	}

	client, db, err := database.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return mongorepo.NewStore(client, db), nil
}
