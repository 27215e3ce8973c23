package model

import (
	"fmt"
	"strings"
)

// Category classifies a configuration artifact by purpose. The value is the
// content_type persisted in the configuration table.
type Category string

const (
	CategoryPlatformInitEngine            Category = "PLATFORM_INIT_ENGINE"
	CategoryPlatformEngine                Category = "PLATFORM_ENGINE"
	CategoryTenantTemplateEngine          Category = "TENANT_TEMPLATE_ENGINE"
	CategoryTenantTemplateSecurityScripts Category = "TENANT_TEMPLATE_SECURITY_SCRIPTS"
	CategoryTenantTemplatePortal          Category = "TENANT_TEMPLATE_PORTAL"
	CategoryPlatformPortal                Category = "PLATFORM_PORTAL"
	CategoryTenantEngine                  Category = "TENANT_ENGINE"
	CategoryTenantSecurityScripts         Category = "TENANT_SECURITY_SCRIPTS"
	CategoryTenantPortal                  Category = "TENANT_PORTAL"
)

// PlatformCategories lists the categories that are not owned by a tenant, in
// the order push and pull process them.
var PlatformCategories = []Category{
	CategoryPlatformInitEngine,
	CategoryPlatformEngine,
	CategoryTenantTemplateEngine,
	CategoryTenantTemplateSecurityScripts,
	CategoryTenantTemplatePortal,
	CategoryPlatformPortal,
}

// TenantCategories lists the per-tenant categories, in processing order.
var TenantCategories = []Category{
	CategoryTenantEngine,
	CategoryTenantSecurityScripts,
	CategoryTenantPortal,
}

// AllCategories returns every category in processing order.
func AllCategories() []Category {
	all := make([]Category, 0, len(PlatformCategories)+len(TenantCategories))
	all = append(all, PlatformCategories...)
	return append(all, TenantCategories...)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// TenantScoped reports whether records of this category belong to a tenant.
func (c Category) TenantScoped() bool {
	for _, tc := range TenantCategories {
		if c == tc {
			return true
		}
	}
	return false
}

// Dir returns the folder name used for this category on disk.
func (c Category) Dir() string {
	return strings.ToLower(string(c))
}

// ParseCategory accepts the persisted name (PLATFORM_ENGINE), the folder name
// (platform_engine) or the dashed name (platform-engine).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !c.Valid() {
		return "", fmt.Errorf("unknown configuration category %q", s)
	}
	return c, nil
}
