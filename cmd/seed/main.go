package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repository"
	"fintrack/internal/service"
	"fintrack/pkg/auth"
	"fintrack/pkg/config"
	"fintrack/pkg/logger"
	"fintrack/pkg/postgres"
	"fintrack/pkg/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// seed creates a demo account with a month of sample transactions so the
// dashboard has something to show on a fresh database.
func main() {
	name := flag.String("name", "Demo", "demo user name")
	email := flag.String("email", "demo@fintrack.local", "demo user email")
	password := flag.String("password", "", "demo user password (required)")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	sessions := session.NewManager(session.NewMemoryStore(), cfg.Session.TTL)
	authService := service.NewAuthService(userRepo, auth.NewHasher(cfg.Auth.BcryptCost), sessions, appLogger)
	txService := service.NewTransactionService(txRepo, appLogger)

	appLogger.Info("Starting database seeding...")

	user, err := authService.Register(ctx, service.RegisterInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			appLogger.Info("Demo user already exists, nothing to do", zap.String("email", *email))
			return
		}
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}

	for _, in := range sampleTransactions(time.Now()) {
		if _, err := txService.Create(ctx, user.ID, in); err != nil {
			appLogger.Fatal("Failed to create sample transaction", zap.Error(err), zap.String("description", in.Description))
		}
	}

	appLogger.Info("Database seeding completed successfully!", zap.Int64("user_id", user.ID))
}

func sampleTransactions(now time.Time) []service.CreateTransactionInput {
	day := func(daysAgo int) string {
		return now.AddDate(0, 0, -daysAgo).Format(models.DateLayout)
	}
	return []service.CreateTransactionInput{
		{Description: "Salary", Kind: string(models.KindIncome), Amount: decimal.RequireFromString("5200.00"), Date: day(25)},
		{Description: "Rent", Kind: string(models.KindExpense), Amount: decimal.RequireFromString("1800.00"), Date: day(24)},
		{Description: "Groceries", Kind: string(models.KindExpense), Amount: decimal.RequireFromString("412.37"), Date: day(12)},
		{Description: "Freelance project", Kind: string(models.KindIncome), Amount: decimal.RequireFromString("950.00"), Date: day(8)},
		{Description: "Electricity bill", Kind: string(models.KindExpense), Amount: decimal.RequireFromString("189.90"), Date: day(3)},
		{Description: "Coffee", Kind: string(models.KindExpense), Amount: decimal.RequireFromString("12.50"), Date: day(0)},
		{Description: "Last quarter bonus", Kind: string(models.KindIncome), Amount: decimal.RequireFromString("1500.00"), Date: day(75)},
	}
}
