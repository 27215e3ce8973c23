package export

import (
	"context"
	"database/sql"
	"sort"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
)

// mockStore is a minimal in-memory store for export tests.
type mockStore struct {
	version string
	records map[model.Key]*model.Configuration
	txCount int
}

func newMockStore(version string) *mockStore {
	return &mockStore{
		version: version,
		records: make(map[model.Key]*model.Configuration),
	}
}

func (m *mockStore) add(c *model.Configuration) {
	m.records[c.Key()] = c
}

func (m *mockStore) InsertAll(_ context.Context, records []*model.Configuration) error {
	for _, c := range records {
		m.add(c)
	}
	return nil
}

func (m *mockStore) DeleteAll(_ context.Context) error {
	m.records = make(map[model.Key]*model.Configuration)
	return nil
}

func (m *mockStore) ReadAll(_ context.Context, category model.Category, tenantID *int64) ([]*model.Configuration, error) {
	tenant := store.TenantColumn(tenantID)
	var out []*model.Configuration
	for k, c := range m.records {
		if k.Category == category && k.TenantID == tenant {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStore) ListTenantIDs(_ context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for k := range m.records {
		if k.TenantID > 0 && !seen[k.TenantID] {
			seen[k.TenantID] = true
			ids = append(ids, k.TenantID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockStore) Exists(_ context.Context) (bool, error) {
	return m.version != "", nil
}

func (m *mockStore) PlatformVersion(_ context.Context) (string, error) {
	if m.version == "" {
		return "", sql.ErrNoRows
	}
	return m.version, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	m.txCount++
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
