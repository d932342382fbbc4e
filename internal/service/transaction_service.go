package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TransactionStore is the persistence the transaction service depends on.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	ListByUser(ctx context.Context, userID int64) ([]*models.Transaction, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	TrailingTotal(ctx context.Context, userID int64, kind models.TransactionKind) (decimal.Decimal, error)
}

type TransactionService struct {
	store  TransactionStore
	logger *zap.Logger
}

func NewTransactionService(store TransactionStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
	}
}

type CreateTransactionInput struct {
	Description string
	Kind        string
	Amount      decimal.Decimal
	Date        string
}

// Create validates in and stores it for ownerID. Every failed rule is
// reported at once and nothing is written.
func (s *TransactionService) Create(ctx context.Context, ownerID int64, in CreateTransactionInput) (*models.Transaction, error) {
	tx, err := buildTransaction(ownerID, in)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func buildTransaction(ownerID int64, in CreateTransactionInput) (*models.Transaction, error) {
	verr := &ValidationError{}

	description := cleanText(in.Description)
	if description == "" {
		verr.add("description is required")
	} else if tooLong(description, models.MaxDescriptionLength) {
		verr.add(fmt.Sprintf("description must be at most %d characters", models.MaxDescriptionLength))
	}

	kind := models.TransactionKind(strings.TrimSpace(in.Kind))
	if !kind.Valid() {
		verr.add(fmt.Sprintf("kind must be %q or %q", models.KindIncome, models.KindExpense))
	}

	amount, problem := checkAmount(in.Amount)
	if problem != "" {
		verr.add(problem)
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		verr.add("date must be a valid date in YYYY-MM-DD format")
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return &models.Transaction{
		UserID:      ownerID,
		Description: description,
		Kind:        kind,
		Amount:      amount,
		Date:        date,
	}, nil
}

// checkAmount rounds a to cents. The exponent is bounded before any
// arithmetic: rescaling a value like 1e50000000 allocates a number with that
// many digits.
func checkAmount(a decimal.Decimal) (decimal.Decimal, string) {
	tooLarge := fmt.Sprintf("amount must be less than %s", models.MaxAmount.String())

	if a.Sign() <= 0 {
		return decimal.Zero, "amount must be greater than zero"
	}
	if a.NumDigits()+int(a.Exponent()) > models.MaxAmountIntegerDigits {
		return decimal.Zero, tooLarge
	}
	if a.Exponent() < -models.MaxAmountScale {
		return decimal.Zero, fmt.Sprintf("amount must have at most %d decimal places", models.MaxAmountScale)
	}

	amount := a.Round(2)
	switch {
	case !amount.IsPositive():
		return decimal.Zero, "amount must be greater than zero"
	case amount.GreaterThanOrEqual(models.MaxAmount):
		return decimal.Zero, tooLarge
	}
	return amount, ""
}

func (s *TransactionService) List(ctx context.Context, ownerID int64) ([]*models.Transaction, error) {
	return s.store.ListByUser(ctx, ownerID)
}

// Dashboard runs the three aggregate queries concurrently.
func (s *TransactionService) Dashboard(ctx context.Context, ownerID int64) (*models.Dashboard, error) {
	var d models.Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Balance, err = s.store.Balance(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Income30, err = s.store.TrailingTotal(gctx, ownerID, models.KindIncome)
		return err
	})
	g.Go(func() error {
		var err error
		d.Expense30, err = s.store.TrailingTotal(gctx, ownerID, models.KindExpense)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
