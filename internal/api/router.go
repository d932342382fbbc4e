package api

import (
	"errors"
	"time"

	"fintrack/docs"
	"fintrack/internal/api/handlers"
	"fintrack/internal/dto"
	"fintrack/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	Cookie        middleware.CookieConfig
	SessionSecret string
	// AccessLog enables the per-request access log line.
	AccessLog bool
}

func SetupRouter(
	authHandler *handlers.AuthHandler,
	txHandler *handlers.TransactionHandler,
	sessions middleware.SessionResolver,
	cfg RouterConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "fintrack",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: errorHandler(appLogger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestIDHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,X-Requested-With,Content-Type,Accept,Authorization",
	}))
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: middleware.CookieKey(cfg.SessionSecret),
	}))

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	requireSession := middleware.RequireSession(sessions, cfg.Cookie, appLogger)

	api := app.Group("/api")
	api.Get("/health", handlers.Health)

	// Auth routes (public)
	api.Post("/cadastrar", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)

	// Protected routes
	api.Get("/usuario", requireSession, authHandler.Me)
	api.Get("/transacoes", requireSession, txHandler.ListTransactions)
	api.Post("/transacoes", requireSession, txHandler.CreateTransaction)
	api.Get("/dashboard", requireSession, txHandler.Dashboard)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Success: false,
			Error:   "Route not found",
		})
	})

	return app
}

// errorHandler answers anything a handler returned or panicked with. Fiber
// errors keep their status and message; everything else becomes a bare 500.
func errorHandler(appLogger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{
				Success: false,
				Error:   fe.Message,
			})
		}

		appLogger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.RequestID(c)),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false,
			Error:   "Internal server error",
		})
	}
}
