package model

import (
	"fmt"
	"strconv"
)

// Configuration is a single named configuration artifact. Records are values:
// they are identified by (TenantID, Category, Name) and carry no other
// identity.
type Configuration struct {
	Name     string   `json:"name"`
	Content  []byte   `json:"content"`
	Category Category `json:"category"`
	TenantID *int64   `json:"tenant_id,omitempty"` // nil for platform and tenant-template categories
}

// Key identifies a configuration record within the store.
type Key struct {
	TenantID int64 // 0 when the record is not owned by a tenant
	Category Category
	Name     string
}

// NewConfiguration returns a platform-wide record.
func NewConfiguration(category Category, name string, content []byte) *Configuration {
	if content == nil {
		content = []byte{}
	}
	return &Configuration{Name: name, Content: content, Category: category}
}

// NewTenantConfiguration returns a record owned by the given tenant.
func NewTenantConfiguration(category Category, tenantID int64, name string, content []byte) *Configuration {
	c := NewConfiguration(category, name, content)
	c.TenantID = &tenantID
	return c
}

// Key returns the identity of the record.
func (c *Configuration) Key() Key {
	k := Key{Category: c.Category, Name: c.Name}
	if c.TenantID != nil {
		k.TenantID = *c.TenantID
	}
	return k
}

func (c *Configuration) String() string {
	tenant := "none"
	if c.TenantID != nil {
		tenant = strconv.FormatInt(*c.TenantID, 10)
	}
	return fmt.Sprintf("Configuration{name=%s, category=%s, tenant=%s}", c.Name, c.Category, tenant)
}
