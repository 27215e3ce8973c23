package setup

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
	"github.com/alfredjeanlab/platformsetup/internal/version"
)

// Status describes the platform as seen by this tool.
type Status struct {
	Exists           bool                   `json:"exists"`
	PersistedVersion string                 `json:"persisted_version,omitempty"`
	ExpectedVersion  string                 `json:"expected_version"`
	Compatible       bool                   `json:"compatible"`
	Counts           map[model.Category]int `json:"counts,omitempty"`
	Tenants          []int64                `json:"tenants,omitempty"`
}

// Status reports whether the platform exists, its persisted version and the
// number of stored records per category. Record counts are only read when
// the versions are compatible.
func (p *PlatformSetup) Status(ctx context.Context) (*Status, error) {
	st := &Status{ExpectedVersion: p.opts.ExpectedVersion}

	exists, err := p.platform.TablesExist(ctx)
	if err != nil {
		return nil, storageError("check platform tables", err)
	}
	if !exists {
		return st, nil
	}
	st.Exists = true

	err = p.platform.RunInTransaction(ctx, func(tx store.Store) error {
		persisted, err := tx.PlatformVersion(ctx)
		if err != nil {
			return &StorageError{Op: "read platform version", Err: err}
		}
		st.PersistedVersion = persisted
		if err := version.CheckCompatible(persisted, p.opts.ExpectedVersion); err != nil {
			if errors.Is(err, version.ErrMismatch) {
				return nil
			}
			return err
		}
		st.Compatible = true

		records, err := store.ReadSnapshot(ctx, tx)
		if err != nil {
			return &StorageError{Op: "read configuration", Err: err}
		}
		st.Counts = make(map[model.Category]int)
		seen := make(map[int64]bool)
		for _, c := range records {
			st.Counts[c.Category]++
			if c.TenantID != nil && !seen[*c.TenantID] {
				seen[*c.TenantID] = true
				st.Tenants = append(st.Tenants, *c.TenantID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError("status transaction", err)
	}
	return st, nil
}
