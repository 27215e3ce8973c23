package store

import (
	"context"

	"github.com/alfredjeanlab/platformsetup/internal/model"
)

// Store defines the persistence interface for configuration records.
type Store interface {
	// Configuration records
	InsertAll(ctx context.Context, records []*model.Configuration) error
	DeleteAll(ctx context.Context) error
	ReadAll(ctx context.Context, category model.Category, tenantID *int64) ([]*model.Configuration, error) // ordered by name
	ListTenantIDs(ctx context.Context) ([]int64, error)

	// Platform
	Exists(ctx context.Context) (bool, error)
	PlatformVersion(ctx context.Context) (string, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}

// SchemaManager creates and drops the platform tables.
type SchemaManager interface {
	TablesExist(ctx context.Context) (bool, error)
	// CreateAndInitializeIfNecessary creates the tables when missing and
	// records version as the platform version. It is idempotent.
	CreateAndInitializeIfNecessary(ctx context.Context, version string) error
	DropTables(ctx context.Context) error
}

// Platform is a store that can also manage its own schema.
type Platform interface {
	Store
	SchemaManager
}

// TenantColumn maps a record tenant to the tenant_id column value. Records
// without a tenant are stored under tenant 0.
func TenantColumn(tenantID *int64) int64 {
	if tenantID == nil {
		return 0
	}
	return *tenantID
}

// TenantFromColumn is the inverse of TenantColumn.
func TenantFromColumn(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
