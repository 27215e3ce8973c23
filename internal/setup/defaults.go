package setup

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/alfredjeanlab/platformsetup/internal/model"
)

//go:embed defaults
var embeddedDefaults embed.FS

// defaultManifest lists, per category and in push order, the resources that
// make up the built-in configuration. Entries missing from the defaults file
// system are skipped, so editions can ship a subset.
var defaultManifest = []struct {
	Category model.Category
	Names    []string
}{
	{model.CategoryPlatformInitEngine, []string{
		"platform-init-community-custom.properties",
		"platform-init-custom.xml",
	}},
	{model.CategoryPlatformEngine, []string{
		"platform-community-custom.properties",
		"platform-custom.xml",
		"platform-private-community.properties",
		"platform-sp-custom.properties",
		"platform-sp-cluster-custom.properties",
		"platform-sp-custom.xml",
		"platform-hibernate-cache.xml",
		"tenant-hibernate-cache.xml",
	}},
	{model.CategoryTenantTemplateEngine, []string{
		"tenant-community-custom.properties",
		"tenants-custom.xml",
		"tenant-sp-custom.properties",
		"tenant-sp-cluster-custom.properties",
		"tenant-sp-custom.xml",
	}},
	{model.CategoryTenantTemplateSecurityScripts, []string{
		"ActorMemberPermissionRule.groovy",
		"ActorPermissionRule.groovy",
		"CaseContextPermissionRule.groovy",
		"CasePermissionRule.groovy",
		"CaseVariablePermissionRule.groovy",
		"CommentPermissionRule.groovy",
		"ConnectorInstancePermissionRule.groovy",
		"DocumentPermissionRule.groovy",
		"ProcessConfigurationPermissionRule.groovy",
		"ProcessConnectorDependencyPermissionRule.groovy",
		"ProcessInstantiationPermissionRule.groovy",
		"ProcessPermissionRule.groovy",
		"ProcessResolutionProblemPermissionRule.groovy",
		"ProcessSupervisorPermissionRule.groovy",
		"ProfileEntryPermissionRule.groovy",
		"ProfilePermissionRule.groovy",
		"TaskExecutionPermissionRule.groovy",
		"TaskPermissionRule.groovy",
		"UserPermissionRule.groovy",
	}},
	{model.CategoryTenantTemplatePortal, []string{
		"authenticationManager-config.properties",
		"compound-permissions-mapping.properties",
		"console-config.properties",
		"custom-permissions-mapping.properties",
		"dynamic-permissions-checks.properties",
		"forms-config.properties",
		"resources-permissions-mapping.properties",
		"security-config.properties",
	}},
	{model.CategoryPlatformPortal, []string{
		"cache-config.xml",
		"jaas-standard.cfg",
		"platform-tenant-config.properties",
		"security-config.properties",
	}},
}

// DefaultsFS returns the built-in configuration embedded in the binary,
// laid out as <category dir>/<name>.
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		panic(err) // "defaults" is a valid, embedded path
	}
	return sub
}

// LoadDefaults resolves the manifest against fsys.
func LoadDefaults(fsys fs.FS) ([]*model.Configuration, error) {
	var records []*model.Configuration
	for _, entry := range defaultManifest {
		for _, name := range entry.Names {
			p := path.Join(entry.Category.Dir(), name)
			data, err := fs.ReadFile(fsys, p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read default resource %s: %w", p, err)
			}
			records = append(records, model.NewConfiguration(entry.Category, name, data))
		}
	}
	return records, nil
}
