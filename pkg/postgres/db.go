package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAcquireTimeout means every pooled connection stayed busy for longer than
// the acquire timeout.
var ErrAcquireTimeout = errors.New("timed out waiting for a database connection")

// Querier is the subset of pgx used by the repositories. *DB, *pgxpool.Pool
// and pgxmock pools all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB runs every statement on a connection acquired under a bounded wait.
type DB struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

var _ Querier = (*DB)(nil)

func NewDB(pool *pgxpool.Pool, acquireTimeout time.Duration) *DB {
	return &DB{pool: pool, acquireTimeout: acquireTimeout}
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close waits for acquired connections to be released, then closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, classifyAcquireError(ctx, acquireCtx, err)
	}
	return conn, nil
}

// classifyAcquireError turns a deadline hit on the acquire context (but not on
// the caller's context) into ErrAcquireTimeout.
func classifyAcquireError(parent, acquireCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) {
		return ErrAcquireTimeout
	}
	return err
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()

	return conn.Exec(ctx, sql, args...)
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &releasingRows{Rows: rows, conn: conn}, nil
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	conn, err := db.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &releasingRow{row: conn.QueryRow(ctx, sql, args...), conn: conn}
}

// releasingRows hands the connection back to the pool on Close.
type releasingRows struct {
	pgx.Rows
	conn     *pgxpool.Conn
	released bool
}

func (r *releasingRows) Close() {
	r.Rows.Close()
	if !r.released {
		r.released = true
		r.conn.Release()
	}
}

type releasingRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r *releasingRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return r.row.Scan(dest...)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
