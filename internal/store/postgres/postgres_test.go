package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// configurationRowColumns is the column list for store.ScanConfiguration results.
var configurationRowColumns = []string{"tenant_id", "content_type", "resource_name", "resource_content"}

func TestQueryInsertAll(t *testing.T) {
	db, mock := newMockDB(t)
	records := []*model.Configuration{
		model.NewConfiguration(model.CategoryPlatformEngine, "a.properties", []byte("x=1")),
		model.NewTenantConfiguration(model.CategoryTenantPortal, 4, "console-config.properties", []byte("y=2")),
	}
	mock.ExpectExec("INSERT INTO configuration").
		WithArgs(int64(0), "PLATFORM_ENGINE", "a.properties", []byte("x=1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO configuration").
		WithArgs(int64(4), "TENANT_PORTAL", "console-config.properties", []byte("y=2")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryInsertAll(context.Background(), db, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryInsertAll_InvalidRecord(t *testing.T) {
	db, _ := newMockDB(t)
	records := []*model.Configuration{
		model.NewConfiguration(model.CategoryTenantEngine, "no-tenant.properties", nil),
	}
	// No exec expected: validation fails before reaching the database.
	if err := queryInsertAll(context.Background(), db, records); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInsertAll_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)
	records := []*model.Configuration{
		model.NewConfiguration(model.CategoryPlatformEngine, "a.properties", []byte("x=1")),
		model.NewConfiguration(model.CategoryPlatformEngine, "b.properties", []byte("y=2")),
	}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configuration").
		WithArgs(int64(0), "PLATFORM_ENGINE", "a.properties", []byte("x=1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO configuration").
		WithArgs(int64(0), "PLATFORM_ENGINE", "b.properties", []byte("y=2")).
		WillReturnError(errors.New("value too long for type character varying(120)"))
	mock.ExpectRollback()

	if err := s.InsertAll(context.Background(), records); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM configuration").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO configuration").
		WithArgs(int64(0), "PLATFORM_PORTAL", "cache-config.xml", []byte("<cache/>")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		if err := tx.DeleteAll(context.Background()); err != nil {
			return err
		}
		return tx.InsertAll(context.Background(), []*model.Configuration{
			model.NewConfiguration(model.CategoryPlatformPortal, "cache-config.xml", []byte("<cache/>")),
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM configuration").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectRollback()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		if err := tx.DeleteAll(context.Background()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestRunInTransaction_RollbackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)
	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate")
		}
	}()
	_ = s.RunInTransaction(context.Background(), func(tx store.Store) error {
		panic("boom")
	})
}

func TestRunInTransaction_Nested(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM configuration").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.RunInTransaction(context.Background(), func(inner store.Store) error {
			return inner.DeleteAll(context.Background())
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryReadAll(t *testing.T) {
	db, mock := newMockDB(t)
	rows := sqlmock.NewRows(configurationRowColumns).
		AddRow(int64(0), "PLATFORM_ENGINE", "a.properties", []byte("x=1")).
		AddRow(int64(0), "PLATFORM_ENGINE", "b.properties", []byte("y=2"))
	mock.ExpectQuery("SELECT .+ FROM configuration WHERE tenant_id = \\$1 AND content_type = \\$2\\s+ORDER BY resource_name").
		WithArgs(int64(0), "PLATFORM_ENGINE").
		WillReturnRows(rows)

	got, err := queryReadAll(context.Background(), db, model.CategoryPlatformEngine, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Name != "a.properties" || string(got[0].Content) != "x=1" || got[0].TenantID != nil {
		t.Errorf("first record = %s %q", got[0], got[0].Content)
	}
	if got[1].Name != "b.properties" || string(got[1].Content) != "y=2" {
		t.Errorf("second record = %s %q", got[1], got[1].Content)
	}
}

func TestQueryReadAll_Tenant(t *testing.T) {
	db, mock := newMockDB(t)
	tenant := int64(9)
	rows := sqlmock.NewRows(configurationRowColumns).
		AddRow(int64(9), "TENANT_ENGINE", "bonita-tenant-custom.xml", []byte("<beans/>"))
	mock.ExpectQuery("SELECT .+ FROM configuration").
		WithArgs(int64(9), "TENANT_ENGINE").
		WillReturnRows(rows)

	got, err := queryReadAll(context.Background(), db, model.CategoryTenantEngine, &tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].TenantID == nil || *got[0].TenantID != 9 {
		t.Fatalf("got %v", got)
	}
}

func TestQueryListTenantIDs(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT DISTINCT tenant_id FROM configuration").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"}).AddRow(int64(1)).AddRow(int64(7)))

	got, err := queryListTenantIDs(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 7 {
		t.Fatalf("got %v, want [1 7]", got)
	}
}

func TestQueryTablesExist(t *testing.T) {
	for _, tc := range []struct {
		count int
		want  bool
	}{
		{0, false},
		{1, false},
		{2, true},
	} {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM information_schema.tables").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tc.count))
		got, err := queryTablesExist(context.Background(), db)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("count=%d: got %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestQueryPlatformVersion(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT version FROM platform").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("7.3.0"))

	got, err := queryPlatformVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "7.3.0" {
		t.Errorf("got %q, want %q", got, "7.3.0")
	}
}

func TestQueryPlatformVersion_NoRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT version FROM platform").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	_, err := queryPlatformVersion(context.Background(), db)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryInsertPlatform(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO platform .+ ON CONFLICT \\(id\\) DO NOTHING").
		WithArgs("7.3.0", int64(1700000000000), createdBy).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryInsertPlatform(context.Background(), db, "7.3.0", 1700000000000, createdBy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, name := range []string{
		"migrations/000001_create_platform.up.sql",
		"migrations/000001_create_platform.down.sql",
	} {
		data, err := migrationsFS.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
