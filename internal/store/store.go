// Package store persists tenant-scoped booking data in Postgres. Every query
// except the phone-line lookup carries the tenant's business_id filter.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row does not exist for the given tenant.
var ErrNotFound = errors.New("store: not found")

// PgxPool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store executes tenant-scoped reads and writes.
type Store struct {
	pool PgxPool
}

// New creates a store backed by the given pool.
func New(pool PgxPool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}
