// Package postgres implements the store.Platform interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
)

// PostgresStore implements store.Platform backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Platform.
var _ store.Platform = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL and
// configures the connection pool. It does not create any table: see
// CreateAndInitializeIfNecessary.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewWithDB wraps an already opened database handle.
func NewWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InsertAll inserts every record in its own transaction so that a failure
// leaves no partial insert behind.
func (s *PostgresStore) InsertAll(ctx context.Context, records []*model.Configuration) error {
	return s.RunInTransaction(ctx, func(tx store.Store) error {
		return tx.InsertAll(ctx, records)
	})
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	return queryDeleteAll(ctx, s.db)
}

func (s *PostgresStore) ReadAll(ctx context.Context, category model.Category, tenantID *int64) ([]*model.Configuration, error) {
	return queryReadAll(ctx, s.db, category, tenantID)
}

func (s *PostgresStore) ListTenantIDs(ctx context.Context) ([]int64, error) {
	return queryListTenantIDs(ctx, s.db)
}

func (s *PostgresStore) Exists(ctx context.Context) (bool, error) {
	return queryTablesExist(ctx, s.db)
}

func (s *PostgresStore) PlatformVersion(ctx context.Context) (string, error) {
	return queryPlatformVersion(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
// A panic in fn rolls back before propagating.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) InsertAll(ctx context.Context, records []*model.Configuration) error {
	return queryInsertAll(ctx, s.tx, records)
}

func (s *txStore) DeleteAll(ctx context.Context) error {
	return queryDeleteAll(ctx, s.tx)
}

func (s *txStore) ReadAll(ctx context.Context, category model.Category, tenantID *int64) ([]*model.Configuration, error) {
	return queryReadAll(ctx, s.tx, category, tenantID)
}

func (s *txStore) ListTenantIDs(ctx context.Context) ([]int64, error) {
	return queryListTenantIDs(ctx, s.tx)
}

func (s *txStore) Exists(ctx context.Context) (bool, error) {
	return queryTablesExist(ctx, s.tx)
}

func (s *txStore) PlatformVersion(ctx context.Context) (string, error) {
	return queryPlatformVersion(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
