package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/api"
	"fintrack/internal/api/handlers"
	"fintrack/internal/repository"
	"fintrack/internal/service"
	"fintrack/pkg/auth"
	"fintrack/pkg/config"
	"fintrack/pkg/logger"
	"fintrack/pkg/middleware"
	"fintrack/pkg/postgres"
	"fintrack/pkg/redis"
	"fintrack/pkg/session"

	"go.uber.org/zap"
)

// @title Fintrack API
// @version 1.0
// @description Personal finance tracker: accounts, cookie sessions, transactions and a dashboard.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting fintrack service")

	if cfg.UsesDefaultSecret() {
		appLogger.Warn("SESSION_SECRET is not set, using the built-in development secret")
	}
	if !cfg.Session.CookieSecure {
		appLogger.Warn("Session cookie is sent without the Secure flag; set SESSION_COOKIE_SECURE=true behind HTTPS")
	}

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoSchema {
		if err := postgres.EnsureSchema(ctx, db, appLogger); err != nil {
			appLogger.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	// Initialize session store
	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client, err := redis.NewClient(ctx, &cfg.Redis, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		store = session.NewRedisStore(client, cfg.Session.RedisPrefix)
	default:
		store = session.NewMemoryStore()
	}
	appLogger.Info("Session store ready",
		zap.String("store", cfg.Session.Store),
		zap.Duration("ttl", cfg.Session.TTL),
	)
	sessions := session.NewManager(store, cfg.Session.TTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	// Initialize services
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, hasher, sessions, appLogger)
	txService := service.NewTransactionService(txRepo, appLogger)

	// Initialize handlers
	cookie := middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}
	authHandler := handlers.NewAuthHandler(authService, cookie, appLogger)
	txHandler := handlers.NewTransactionHandler(txService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, txHandler, authService, api.RouterConfig{
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		Cookie:        cookie,
		SessionSecret: cfg.Session.Secret,
		AccessLog:     true,
	}, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
