package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTransactionStore evaluates the same rules as the SQL in
// repository.TransactionRepository, in memory.
type fakeTransactionStore struct {
	mu     sync.Mutex
	rows   []models.Transaction
	nextID int64
	today  time.Time
	err    error
}

func (f *fakeTransactionStore) Create(_ context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	tx.ID = f.nextID
	f.rows = append(f.rows, *tx)
	return nil
}

func (f *fakeTransactionStore) ListByUser(_ context.Context, userID int64) ([]*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Transaction, 0)
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			tx := f.rows[i]
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeTransactionStore) Balance(_ context.Context, userID int64) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return decimal.Zero, f.err
	}
	total := decimal.Zero
	for _, tx := range f.rows {
		if tx.UserID != userID {
			continue
		}
		if tx.Kind == models.KindIncome {
			total = total.Add(tx.Amount)
		} else {
			total = total.Sub(tx.Amount)
		}
	}
	return total, nil
}

func (f *fakeTransactionStore) TrailingTotal(_ context.Context, userID int64, kind models.TransactionKind) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	from, to := repository.TrailingWindow(f.today, repository.TrailingDays)
	total := decimal.Zero
	for _, tx := range f.rows {
		if tx.UserID == userID && tx.Kind == kind && !tx.Date.Before(from) && !tx.Date.After(to) {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

func newTransactionService(today time.Time) (*TransactionService, *fakeTransactionStore) {
	store := &fakeTransactionStore{today: today}
	return NewTransactionService(store, zap.NewNop()), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransactionService_Create(t *testing.T) {
	svc, store := newTransactionService(time.Now())

	tx, err := svc.Create(context.Background(), 7, CreateTransactionInput{
		Description: "  Mercado ",
		Kind:        "expense",
		Amount:      dec("40.456"),
		Date:        "2024-01-02",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), tx.ID)
	assert.Equal(t, int64(7), tx.UserID)
	assert.Equal(t, "Mercado", tx.Description)
	assert.Equal(t, models.KindExpense, tx.Kind)
	assert.Equal(t, "40.46", tx.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Len(t, store.rows, 1)
}

func TestTransactionService_Create_Validation(t *testing.T) {
	valid := CreateTransactionInput{Description: "Salary", Kind: "income", Amount: dec("100"), Date: "2024-01-01"}

	tests := []struct {
		name    string
		mutate  func(in *CreateTransactionInput)
		problem string
	}{
		{name: "invalid kind", mutate: func(in *CreateTransactionInput) { in.Kind = "invalid" }, problem: "kind"},
		{name: "portuguese kind", mutate: func(in *CreateTransactionInput) { in.Kind = "receita" }, problem: "kind"},
		{name: "empty description", mutate: func(in *CreateTransactionInput) { in.Description = "   " }, problem: "description"},
		{name: "long description", mutate: func(in *CreateTransactionInput) { in.Description = strings.Repeat("x", 201) }, problem: "description"},
		{name: "zero amount", mutate: func(in *CreateTransactionInput) { in.Amount = decimal.Zero }, problem: "amount"},
		{name: "negative amount", mutate: func(in *CreateTransactionInput) { in.Amount = dec("-5") }, problem: "amount"},
		{name: "rounds to zero", mutate: func(in *CreateTransactionInput) { in.Amount = dec("0.004") }, problem: "amount"},
		{name: "amount overflows numeric(10,2)", mutate: func(in *CreateTransactionInput) { in.Amount = dec("100000000") }, problem: "amount"},
		{name: "amount rounds up to the limit", mutate: func(in *CreateTransactionInput) { in.Amount = dec("99999999.999") }, problem: "less than"},
		{name: "huge exponent", mutate: func(in *CreateTransactionInput) { in.Amount = dec("1e50000000") }, problem: "less than"},
		{name: "tiny exponent", mutate: func(in *CreateTransactionInput) { in.Amount = dec("1e-50000000") }, problem: "decimal places"},
		{name: "zero with huge exponent", mutate: func(in *CreateTransactionInput) { in.Amount = dec("0e50000000") }, problem: "greater than zero"},
		{name: "unparsable date", mutate: func(in *CreateTransactionInput) { in.Date = "02/01/2024" }, problem: "date"},
		{name: "impossible date", mutate: func(in *CreateTransactionInput) { in.Date = "2024-02-30" }, problem: "date"},
		{name: "missing date", mutate: func(in *CreateTransactionInput) { in.Date = "" }, problem: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTransactionService(time.Now())
			in := valid
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), 7, in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Problems, 1)
			assert.Contains(t, verr.Problems[0], tt.problem)
			assert.Empty(t, store.rows, "nothing may be persisted")
		})
	}
}

func TestTransactionService_Create_ExtremeExponentsAreCheap(t *testing.T) {
	for _, raw := range []string{`"1e50000000"`, `"1e-50000000"`, `"-1e2000000000"`, `1e2000000000`} {
		t.Run(raw, func(t *testing.T) {
			var amount decimal.Decimal
			require.NoError(t, json.Unmarshal([]byte(raw), &amount))

			start := time.Now()
			_, err := buildTransaction(7, CreateTransactionInput{
				Description: "Salary",
				Kind:        "income",
				Amount:      amount,
				Date:        "2024-01-01",
			})
			elapsed := time.Since(start)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Problems, 1)
			assert.Less(t, elapsed, time.Second)
		})
	}
}

func TestTransactionService_Create_KeepsPrecisionWithinScale(t *testing.T) {
	tx, err := buildTransaction(7, CreateTransactionInput{
		Description: "Salary",
		Kind:        "income",
		Amount:      dec("99999999.9912345678"),
		Date:        "2024-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", tx.Amount.StringFixed(2))
}

func TestTransactionService_Create_ReportsAllProblems(t *testing.T) {
	svc, _ := newTransactionService(time.Now())

	_, err := svc.Create(context.Background(), 7, CreateTransactionInput{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 4)
}

func TestTransactionService_Create_StoreError(t *testing.T) {
	svc, store := newTransactionService(time.Now())
	store.err = errors.New("disk full")

	_, err := svc.Create(context.Background(), 7, CreateTransactionInput{Description: "Salary", Kind: "income", Amount: dec("1"), Date: "2024-01-01"})
	assert.ErrorContains(t, err, "disk full")
}

func TestTransactionService_List_Order(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTransactionService(time.Now())

	for _, in := range []CreateTransactionInput{
		{Description: "first", Kind: "income", Amount: dec("1"), Date: "2024-01-01"},
		{Description: "second", Kind: "income", Amount: dec("1"), Date: "2024-01-02"},
		{Description: "third", Kind: "expense", Amount: dec("1"), Date: "2024-01-01"},
	} {
		_, err := svc.Create(ctx, 7, in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, 7)
	require.NoError(t, err)

	ids := make([]int64, len(got))
	for i, tx := range got {
		ids[i] = tx.ID
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestTransactionService_Dashboard(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
	svc, _ := newTransactionService(today)

	for _, in := range []CreateTransactionInput{
		{Description: "salary", Kind: "income", Amount: dec("100.00"), Date: "2024-03-01"},   // 30 days back
		{Description: "groceries", Kind: "expense", Amount: dec("40.00"), Date: "2024-03-31"},
		{Description: "old bonus", Kind: "income", Amount: dec("500.00"), Date: "2024-02-29"}, // 31 days back
		{Description: "old rent", Kind: "expense", Amount: dec("300.00"), Date: "2024-01-15"},
	} {
		_, err := svc.Create(ctx, 7, in)
		require.NoError(t, err)
	}
	// another user's data is invisible
	_, err := svc.Create(ctx, 8, CreateTransactionInput{Description: "x", Kind: "income", Amount: dec("999"), Date: "2024-03-30"})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, "260.00", d.Balance.StringFixed(2))
	assert.Equal(t, "100.00", d.Income30.StringFixed(2))
	assert.Equal(t, "40.00", d.Expense30.StringFixed(2))
}

func TestTransactionService_Dashboard_SimpleBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTransactionService(time.Now())

	_, err := svc.Create(ctx, 1, CreateTransactionInput{Description: "in", Kind: "income", Amount: dec("100.00"), Date: "2024-01-01"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateTransactionInput{Description: "out", Kind: "expense", Amount: dec("40.00"), Date: "2024-01-02"})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "60.00", d.Balance.StringFixed(2))
}

func TestTransactionService_Dashboard_Empty(t *testing.T) {
	svc, _ := newTransactionService(time.Now())

	d, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, d.Balance.IsZero())
	assert.True(t, d.Income30.IsZero())
	assert.True(t, d.Expense30.IsZero())
}

func TestTransactionService_Dashboard_Error(t *testing.T) {
	svc, store := newTransactionService(time.Now())
	store.err = errors.New("timeout")

	_, err := svc.Dashboard(context.Background(), 1)
	assert.ErrorContains(t, err, "timeout")
}
