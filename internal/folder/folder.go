// Package folder maps configuration records to and from the on-disk layout:
//
//	<root>/<category dir>/<name>                     platform and tenant-template categories
//	<root>/tenants/<tenant id>/<category dir>/<name> tenant categories
//
// File names map 1:1 to record names and contents are copied byte for byte.
package folder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/alfredjeanlab/platformsetup/internal/model"
)

// TenantsDir is the directory, relative to the root, holding per-tenant folders.
const TenantsDir = "tenants"

// Dir returns the directory holding records of category for the given tenant.
func Dir(root string, category model.Category, tenantID *int64) string {
	if category.TenantScoped() && tenantID != nil {
		return filepath.Join(root, TenantsDir, strconv.FormatInt(*tenantID, 10), category.Dir())
	}
	return filepath.Join(root, category.Dir())
}

// Decode reads the regular files directly under the directory of category.
// A missing directory yields no records; sub-directories are ignored.
func Decode(root string, category model.Category, tenantID *int64) ([]*model.Configuration, error) {
	if category.TenantScoped() != (tenantID != nil) {
		return nil, fmt.Errorf("decode %s: tenant id mismatch for category", category)
	}
	dir := Dir(root, category, tenantID)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var records []*model.Configuration
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := model.ValidateName(e.Name()); err != nil {
			return nil, fmt.Errorf("file %s: %w", path, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", path, err)
		}
		c := model.NewConfiguration(category, e.Name(), content)
		c.TenantID = tenantID
		records = append(records, c)
	}
	return records, nil
}

// DecodeAll decodes every platform category, then every tenant category of
// every tenant found under <root>/tenants.
func DecodeAll(root string) ([]*model.Configuration, error) {
	var all []*model.Configuration
	for _, category := range model.PlatformCategories {
		records, err := Decode(root, category, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}

	tenants, err := TenantIDs(root)
	if err != nil {
		return nil, err
	}
	for _, id := range tenants {
		for _, category := range model.TenantCategories {
			records, err := Decode(root, category, &id)
			if err != nil {
				return nil, err
			}
			all = append(all, records...)
		}
	}
	return all, nil
}

// TenantIDs lists the tenant folders under <root>/tenants in ascending order.
// A folder whose name is not a positive integer is an error.
func TenantIDs(root string) ([]int64, error) {
	dir := filepath.Join(root, TenantsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var ids []int64
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(e.Name(), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid tenant folder %s: name must be a positive tenant id", filepath.Join(dir, e.Name()))
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Encode writes every record below root, creating directories as needed.
// Existing files with the same name are overwritten.
func Encode(root string, records []*model.Configuration) error {
	for _, c := range records {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("encode %s: %w", c, err)
		}
		dir := Dir(root, c.Category, c.TenantID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
		path := filepath.Join(dir, c.Name)
		if err := os.WriteFile(path, c.Content, 0o644); err != nil {
			return fmt.Errorf("write file %s: %w", path, err)
		}
	}
	return nil
}
