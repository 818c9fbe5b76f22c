// Package store implements the importer persistence boundary on PostgreSQL
// via pgx. All queries are tenant-scoped in SQL, not in Go: every statement
// carries a tenant_id predicate so a bug higher up cannot cross tenants.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightclass/dataimport/internal/importer"
)

// Store is the pgx-backed implementation of importer.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface checks.
var (
	_ importer.Store    = (*Store)(nil)
	_ importer.RowStore = (*rowStore)(nil)
)

// New wraps a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// rowStore exposes the per-row write surface on top of one open transaction.
type rowStore struct {
	tx pgx.Tx
}

// RunRow runs fn inside a transaction, committing on nil and rolling back on
// error. The transaction scopes one import row: its entity write and its job
// record land or vanish together.
func (s *Store) RunRow(ctx context.Context, fn func(importer.RowStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&rowStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// notFound translates pgx's no-rows sentinel into the importer's.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return importer.ErrNotFound
	}
	return err
}
