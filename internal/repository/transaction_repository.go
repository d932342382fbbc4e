package repository

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/models"
	"fintrack/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TrailingDays is the look-back of the dashboard totals.
const TrailingDays = 30

var transactionColumns = []string{"id", "user_id", "description", "kind", "amount::text", "date", "created_at"}

type TransactionRepository struct {
	db     postgres.Querier
	logger *zap.Logger
	now    func() time.Time
}

func NewTransactionRepository(db postgres.Querier, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to decide what "today" is.
func (r *TransactionRepository) WithClock(now func() time.Time) *TransactionRepository {
	r.now = now
	return r
}

// Create inserts tx and fills in ID and CreatedAt. Amount is stored with two
// decimal places.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns("user_id", "description", "kind", "amount", "date").
		Values(tx.UserID, tx.Description, string(tx.Kind), tx.Amount.StringFixed(2), tx.Date).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&tx.ID, &tx.CreatedAt); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	r.logger.Debug("Transaction created",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("user_id", tx.UserID),
		zap.String("kind", string(tx.Kind)),
	)
	return nil
}

// ListByUser returns the user's transactions, newest date first. Same-day
// entries come newest-inserted first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC", "id DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		var (
			tx     models.Transaction
			kind   string
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Description, &kind, &amount, &tx.Date, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Kind = models.TransactionKind(kind)
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount of transaction %d: %w", tx.ID, err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// Balance is the signed sum of all the user's transactions: income adds,
// expense subtracts. Zero when the user has none.
func (r *TransactionRepository) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := squirrel.Select("COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE -amount END), 0)::text").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	return r.sum(ctx, query)
}

// TrailingTotal sums the user's transactions of one kind dated within the
// last TrailingDays days, today included. Today is the calendar date of the
// repository clock in the application's time zone, not the database's
// CURRENT_DATE; the two differ around midnight when the zones differ.
func (r *TransactionRepository) TrailingTotal(ctx context.Context, userID int64, kind models.TransactionKind) (decimal.Decimal, error) {
	from, to := TrailingWindow(r.now(), TrailingDays)

	query := squirrel.Select("COALESCE(SUM(amount), 0)::text").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"kind": string(kind)}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		PlaceholderFormat(squirrel.Dollar)

	return r.sum(ctx, query)
}

func (r *TransactionRepository) sum(ctx context.Context, query squirrel.SelectBuilder) (decimal.Decimal, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var total string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("aggregate transactions: %w", err)
	}

	return decimal.NewFromString(total)
}

// TrailingWindow returns the inclusive calendar-date range [today-days, today]
// for the calendar day of now in now's location.
func TrailingWindow(now time.Time, days int) (from, to time.Time) {
	y, m, d := now.Date()
	to = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return to.AddDate(0, 0, -days), to
}
