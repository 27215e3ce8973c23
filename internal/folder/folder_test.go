package folder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alfredjeanlab/platformsetup/internal/model"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDir(t *testing.T) {
	tenant := int64(3)
	for _, tc := range []struct {
		category model.Category
		tenant   *int64
		want     string
	}{
		{model.CategoryPlatformEngine, nil, filepath.Join("root", "platform_engine")},
		{model.CategoryTenantTemplatePortal, nil, filepath.Join("root", "tenant_template_portal")},
		{model.CategoryTenantSecurityScripts, &tenant, filepath.Join("root", "tenants", "3", "tenant_security_scripts")},
	} {
		if got := Dir("root", tc.category, tc.tenant); got != tc.want {
			t.Errorf("Dir(%s) = %q, want %q", tc.category, got, tc.want)
		}
	}
}

func TestDecode_MissingDirectory(t *testing.T) {
	records, err := Decode(t.TempDir(), model.CategoryPlatformEngine, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestDecode_NonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "platform_engine", "b.properties"), []byte("y=2"))
	writeFile(t, filepath.Join(root, "platform_engine", "a.properties"), []byte("x=1"))
	writeFile(t, filepath.Join(root, "platform_engine", "nested", "ignored.properties"), []byte("z=3"))

	records, err := Decode(root, model.CategoryPlatformEngine, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "a.properties" || string(records[0].Content) != "x=1" {
		t.Errorf("records[0] = %s %q", records[0], records[0].Content)
	}
	if records[1].Name != "b.properties" || string(records[1].Content) != "y=2" {
		t.Errorf("records[1] = %s %q", records[1], records[1].Content)
	}
	for _, r := range records {
		if r.Category != model.CategoryPlatformEngine || r.TenantID != nil {
			t.Errorf("unexpected record %s", r)
		}
	}
}

func TestDecode_TenantMismatch(t *testing.T) {
	if _, err := Decode(t.TempDir(), model.CategoryTenantEngine, nil); err == nil {
		t.Fatal("expected error for tenant category without tenant")
	}
	id := int64(1)
	if _, err := Decode(t.TempDir(), model.CategoryPlatformEngine, &id); err == nil {
		t.Fatal("expected error for platform category with tenant")
	}
}

func TestDecodeAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "platform_init_engine", "init.properties"), []byte("init"))
	writeFile(t, filepath.Join(root, "platform_portal", "cache-config.xml"), []byte("<cache/>"))
	writeFile(t, filepath.Join(root, "tenants", "12", "tenant_engine", "engine.properties"), []byte("t12"))
	writeFile(t, filepath.Join(root, "tenants", "2", "tenant_portal", "console.properties"), []byte("t2"))
	writeFile(t, filepath.Join(root, "unrelated", "file.txt"), []byte("skip"))

	records, err := DecodeAll(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for _, r := range records {
		got = append(got, r.String())
	}
	want := []string{
		"Configuration{name=init.properties, category=PLATFORM_INIT_ENGINE, tenant=none}",
		"Configuration{name=cache-config.xml, category=PLATFORM_PORTAL, tenant=none}",
		"Configuration{name=console.properties, category=TENANT_PORTAL, tenant=2}",
		"Configuration{name=engine.properties, category=TENANT_ENGINE, tenant=12}",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTenantIDs_Invalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tenants", "abc", "tenant_engine", "x"), []byte("x"))
	if _, err := TenantIDs(root); err == nil {
		t.Fatal("expected error for non-numeric tenant folder")
	}
	if _, err := DecodeAll(root); err == nil {
		t.Fatal("DecodeAll should propagate the tenant folder error")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := t.TempDir()
	binary := []byte{0x00, 0x01, '\r', '\n', 0xfe, 0xff}
	records := []*model.Configuration{
		model.NewConfiguration(model.CategoryPlatformEngine, "a.properties", []byte("x=1\r\n")),
		model.NewConfiguration(model.CategoryPlatformEngine, "blob.bin", binary),
		model.NewConfiguration(model.CategoryTenantTemplateSecurityScripts, "CasePermissionRule.groovy", []byte("return true")),
		model.NewTenantConfiguration(model.CategoryTenantSecurityScripts, 5, "CasePermissionRule.groovy", []byte("return false")),
		model.NewConfiguration(model.CategoryPlatformPortal, "empty.properties", nil),
	}
	if err := Encode(root, records); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "tenants", "5", "tenant_security_scripts", "CasePermissionRule.groovy"))
	if err != nil {
		t.Fatalf("read tenant file: %v", err)
	}
	if string(data) != "return false" {
		t.Errorf("tenant file = %q", data)
	}

	decoded, err := DecodeAll(root)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	byKey := make(map[model.Key][]byte)
	for _, r := range decoded {
		byKey[r.Key()] = r.Content
	}
	if len(byKey) != len(records) {
		t.Fatalf("decoded %d records, want %d", len(byKey), len(records))
	}
	for _, r := range records {
		got, ok := byKey[r.Key()]
		if !ok {
			t.Errorf("missing %s after round trip", r)
			continue
		}
		if !bytes.Equal(got, r.Content) {
			t.Errorf("%s content = %v, want %v", r, got, r.Content)
		}
	}
}

func TestEncode_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	err := Encode(root, []*model.Configuration{
		model.NewConfiguration(model.CategoryPlatformEngine, "../../outside", []byte("x")),
	})
	if err == nil {
		t.Fatal("expected error for name with path separator")
	}
}

func TestDecode_RejectsInvalidName(t *testing.T) {
	root := t.TempDir()
	dir := Dir(root, model.CategoryPlatformEngine, nil)
	writeFile(t, filepath.Join(dir, `a\b.properties`), []byte("x"))

	if _, err := Decode(root, model.CategoryPlatformEngine, nil); err == nil {
		t.Fatal("expected an error for a name containing a backslash")
	}
}
