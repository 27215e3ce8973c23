package store

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/platformsetup/internal/model"
)

// ReadSnapshot returns every stored record: platform categories first, then
// the tenant categories of each tenant in ascending tenant order. Records of
// one category are ordered by name.
func ReadSnapshot(ctx context.Context, s Store) ([]*model.Configuration, error) {
	var all []*model.Configuration
	for _, category := range model.PlatformCategories {
		records, err := s.ReadAll(ctx, category, nil)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", category, err)
		}
		all = append(all, records...)
	}

	tenants, err := s.ListTenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	for _, id := range tenants {
		for _, category := range model.TenantCategories {
			records, err := s.ReadAll(ctx, category, &id)
			if err != nil {
				return nil, fmt.Errorf("read %s of tenant %d: %w", category, id, err)
			}
			all = append(all, records...)
		}
	}
	return all, nil
}
