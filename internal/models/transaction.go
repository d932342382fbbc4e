package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is one of the closed set of kinds.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

const (
	// DateLayout is the wire and storage format of Transaction.Date.
	DateLayout = "2006-01-02"

	MaxDescriptionLength = 200
)

// MaxAmount is the first value that no longer fits NUMERIC(10,2).
var MaxAmount = decimal.NewFromInt(100_000_000)

const (
	// MaxAmountIntegerDigits is the number of integer digits MaxAmount leaves.
	MaxAmountIntegerDigits = 8
	// MaxAmountScale bounds the fraction digits accepted before rounding.
	MaxAmountScale = 10
)

type Transaction struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	Description string          `db:"description"`
	Kind        TransactionKind `db:"kind"`
	Amount      decimal.Decimal `db:"amount"`
	Date        time.Time       `db:"date"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Dashboard is the aggregate view of one user's transactions.
type Dashboard struct {
	Balance   decimal.Decimal
	Income30  decimal.Decimal
	Expense30 decimal.Decimal
}
