package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// schema is applied at boot; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description VARCHAR(200) NOT NULL,
		kind VARCHAR(10) NOT NULL CHECK (kind IN ('income', 'expense')),
		amount NUMERIC(10, 2) NOT NULL CHECK (amount > 0),
		date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_date_idx
		ON transactions (user_id, date DESC, id DESC)`,
}

// EnsureSchema creates the tables the repositories expect.
func EnsureSchema(ctx context.Context, q Querier, logger *zap.Logger) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("Database schema verified", zap.Int("statements", len(schema)))
	return nil
}
