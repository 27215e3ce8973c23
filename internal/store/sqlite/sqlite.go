// Package sqlite implements the store.Platform interface on an embedded SQLite
// database file. It serves single-node and development installs that have no
// PostgreSQL server.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const createdBy = "platformSetup"

// Store implements store.Platform backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Platform = (*Store)(nil)

// Open opens (creating if needed) the database file at path. Tables are not
// created until CreateAndInitializeIfNecessary is called.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertAll(ctx context.Context, records []*model.Configuration) error {
	return s.RunInTransaction(ctx, func(tx store.Store) error {
		return tx.InsertAll(ctx, records)
	})
}

func (s *Store) DeleteAll(ctx context.Context) error {
	return queryDeleteAll(ctx, s.db)
}

func (s *Store) ReadAll(ctx context.Context, category model.Category, tenantID *int64) ([]*model.Configuration, error) {
	return queryReadAll(ctx, s.db, category, tenantID)
}

func (s *Store) ListTenantIDs(ctx context.Context) ([]int64, error) {
	return queryListTenantIDs(ctx, s.db)
}

func (s *Store) Exists(ctx context.Context) (bool, error) {
	return queryTablesExist(ctx, s.db)
}

func (s *Store) PlatformVersion(ctx context.Context) (string, error) {
	return queryPlatformVersion(ctx, s.db)
}

// RunInTransaction runs fn in a transaction, committing when it returns nil
// and rolling back otherwise (including on panic).
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
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

	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TablesExist reports whether the platform tables have been created.
func (s *Store) TablesExist(ctx context.Context) (bool, error) {
	return queryTablesExist(ctx, s.db)
}

// CreateAndInitializeIfNecessary creates the tables and the platform row.
func (s *Store) CreateAndInitializeIfNecessary(ctx context.Context, version string) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := queryInsertPlatform(ctx, s.db, version, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("insert platform row: %w", err)
	}
	return nil
}

// DropTables removes the platform tables in one transaction.
func (s *Store) DropTables(ctx context.Context) error {
	return dropTables(ctx, s.db, "configuration", "platform")
}

func dropTables(ctx context.Context, db *sql.DB, tables ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop table %s: %w", table, err)
		}
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

func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error {
	return nil
}
