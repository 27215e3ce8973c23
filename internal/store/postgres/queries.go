package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryInsertAll(ctx context.Context, db executor, records []*model.Configuration) error {
	for _, c := range records {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("insert %s: %w", c, err)
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO configuration (tenant_id, content_type, resource_name, resource_content)
			VALUES ($1, $2, $3, $4)`,
			store.TenantColumn(c.TenantID),
			string(c.Category),
			c.Name,
			c.Content,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", c, err)
		}
	}
	return nil
}

func queryDeleteAll(ctx context.Context, db executor) error {
	_, err := db.ExecContext(ctx, `DELETE FROM configuration`)
	return err
}

func queryReadAll(ctx context.Context, db executor, category model.Category, tenantID *int64) ([]*model.Configuration, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+store.ConfigurationColumns+`
		FROM configuration WHERE tenant_id = $1 AND content_type = $2
		ORDER BY resource_name`,
		store.TenantColumn(tenantID), string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return store.ScanConfigurations(rows)
}

func queryListTenantIDs(ctx context.Context, db executor) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT tenant_id FROM configuration
		WHERE tenant_id > 0 ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func queryTablesExist(ctx context.Context, db executor) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_name IN ('configuration', 'platform')`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 2, nil
}

func queryPlatformVersion(ctx context.Context, db executor) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT version FROM platform WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("platform row not found: %w", err)
	}
	return v, err
}

func queryInsertPlatform(ctx context.Context, db executor, version string, created int64, createdBy string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO platform (id, version, initial_version, created, created_by)
		VALUES (1, $1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		version, created, createdBy)
	return err
}
