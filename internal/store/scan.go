package store

import (
	"github.com/alfredjeanlab/platformsetup/internal/model"
)

// ConfigurationColumns is the column list, in scan order, used when selecting
// from the configuration table.
const ConfigurationColumns = `tenant_id, content_type, resource_name, resource_content`

// Scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type Scannable interface {
	Scan(dest ...any) error
}

// Rows is the subset of *sql.Rows used by ScanConfigurations.
type Rows interface {
	Scannable
	Next() bool
	Err() error
}

// ScanConfiguration decodes one configuration row. The row must contain the
// columns in the order defined by ConfigurationColumns.
func ScanConfiguration(row Scannable) (*model.Configuration, error) {
	var (
		c        model.Configuration
		tenantID int64
		category string
		content  []byte
	)
	if err := row.Scan(&tenantID, &category, &c.Name, &content); err != nil {
		return nil, err
	}
	c.Category = model.Category(category)
	c.TenantID = TenantFromColumn(tenantID)
	if content == nil {
		content = []byte{}
	}
	c.Content = content
	return &c, nil
}

// ScanConfigurations decodes every remaining row.
func ScanConfigurations(rows Rows) ([]*model.Configuration, error) {
	var configs []*model.Configuration
	for rows.Next() {
		c, err := ScanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}
