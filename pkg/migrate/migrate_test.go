package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateRejectsBadSets(t *testing.T) {
	up := "-- +goose Up\nCREATE TABLE t (id uuid);\n-- +goose Down\nDROP TABLE t;\n"
	cases := map[string]fstest.MapFS{
		"bad name": {"create_t.sql": {Data: []byte(up)}},
		"duplicate version": {
			"20260301090000_a.sql": {Data: []byte(up)},
			"20260301090000_b.sql": {Data: []byte(up)},
		},
		"missing down": {"20260301090000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}},
		"postgres only": {"20260301090000_a.sql": {Data: []byte(
			"-- +goose Up\nCREATE TABLE t (id uuid DEFAULT gen_random_uuid());\n-- +goose Down\nDROP TABLE t;\n")}},
		"spelled out zone": {"20260301090000_a.sql": {Data: []byte(
			"-- +goose Up\nCREATE TABLE t (at timestamp with time zone);\n-- +goose Down\nDROP TABLE t;\n")}},
		"timestamp precision": {"20260301090000_a.sql": {Data: []byte(
			"-- +goose Up\nCREATE TABLE t (at timestamptz(3) NOT NULL);\n-- +goose Down\nDROP TABLE t;\n")}},
		"time of day": {"20260301090000_a.sql": {Data: []byte(
			"-- +goose Up\nCREATE TABLE t (opens time NOT NULL);\n-- +goose Down\nDROP TABLE t;\n")}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, Validate(fsys, "."))
		})
	}

	require.NoError(t, Validate(fstest.MapFS{"README.md": {Data: []byte("notes")}}, "."))
}

func TestSlug(t *testing.T) {
	require.Equal(t, "add_product_slug", Slug("  Add Product-Slug! "))
	require.Equal(t, "", Slug("!!!"))
}

func TestCreateRefusesExistingVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	path, err := createAt(dir, "seed", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301090000_seed.sql"), path)

	_, err = createAt(dir, "seed", now)
	require.ErrorContains(t, err, "already exists")
}

func TestMigrationsApplyOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, DialectSQLite, "", "up"))

	for _, table := range []string{"identities", "profiles", "products", "reseller_customers", "blog_posts"} {
		require.Truef(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}

	require.NoError(t, Run(ctx, sqlDB, DialectSQLite, "", "down"))
	require.False(t, conn.Migrator().HasTable("blog_posts"))
	require.True(t, conn.Migrator().HasTable("reseller_customers"))
}

func TestSQLiteReadsTimestampsAsTime(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_time_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, DialectSQLite, "", "up"))
	require.NoError(t, conn.Exec(`INSERT INTO identities (id, email) VALUES ('3f0e8a7d-2b10-4c55-9a51-6f1c2d9e0b7a', 'a@example.com')`).Error)

	var row struct {
		CreatedAt   time.Time
		UpdatedAt   time.Time
		LastLoginAt *time.Time
	}
	require.NoError(t, conn.Raw(`SELECT created_at, updated_at, last_login_at FROM identities`).Scan(&row).Error)
	require.False(t, row.CreatedAt.IsZero())
	require.False(t, row.UpdatedAt.IsZero())
	require.Nil(t, row.LastLoginAt)

	var declared string
	require.NoError(t, conn.Raw(`SELECT type FROM pragma_table_info('products') WHERE name = 'created_at'`).Scan(&declared).Error)
	require.Equal(t, "timestamp", strings.ToLower(declared))
}

func TestSQLiteFSTranslatesOnlySQL(t *testing.T) {
	src := fstest.MapFS{
		"20260301090000_a.sql": {Data: []byte("CREATE TABLE t (at TIMESTAMPTZ NOT NULL, note text);")},
		"notes.txt":            {Data: []byte("timestamptz")},
	}
	fsys := sqliteFS{FS: src}

	data, err := fs.ReadFile(fsys, "20260301090000_a.sql")
	require.NoError(t, err)
	require.Equal(t, "CREATE TABLE t (at timestamp NOT NULL, note text);", string(data))

	info, err := fs.Stat(fsys, "20260301090000_a.sql")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), info.Size())

	untouched, err := fs.ReadFile(fsys, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, "timestamptz", string(untouched))

	matches, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"20260301090000_a.sql"}, matches)
}

func TestCustomerMigrationUsesCompositeKey(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_reseller_customers.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "PRIMARY KEY (reseller_id, id)"))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Product Slug!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_product_slug.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestDialect(t *testing.T) {
	require.Equal(t, DialectSQLite, Dialect(true))
	require.Equal(t, DialectPostgres, Dialect(false))
}
