package migrations

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/talkdb/talkdb/internal/store"
)

func TestLoadMigrationsSortsAndPairsUpDown(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/sqlite/000002_two.up.sql":   {Data: []byte("SELECT 2;")},
		"sql/sqlite/000002_two.down.sql": {Data: []byte("SELECT -2;")},
		"sql/sqlite/000001_one.up.sql":   {Data: []byte("SELECT 1;")},
		"sql/sqlite/000001_one.down.sql": {Data: []byte("SELECT -1;")},
		"sql/sqlite/README.md":           {Data: []byte("ignored")},
	}

	items, err := loadMigrations(fsys, "sql/sqlite")
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d", len(items))
	}
	if items[0].Version != 1 || items[1].Version != 2 {
		t.Fatalf("unexpected migration order: %+v", items)
	}
	if items[0].Name != "000001_one" {
		t.Fatalf("Name = %q", items[0].Name)
	}
}

func TestLoadMigrationsErrorsWhenDownMissing(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/sqlite/000001_one.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := loadMigrations(fsys, "sql/sqlite")
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "missing down SQL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmbeddedDialectsShareVersions(t *testing.T) {
	var want []int64
	for _, dialect := range []string{"sqlite", "duckdb", "postgres"} {
		runner, err := NewRunner(dialect)
		if err != nil {
			t.Fatalf("NewRunner(%q) error = %v", dialect, err)
		}
		items, err := loadMigrations(runner.fsys, runner.dir)
		if err != nil {
			t.Fatalf("%s loadMigrations() error = %v", dialect, err)
		}
		versions := make([]int64, 0, len(items))
		for _, item := range items {
			versions = append(versions, item.Version)
		}
		if want == nil {
			want = versions
			continue
		}
		if len(versions) != len(want) {
			t.Fatalf("%s versions = %v, want %v", dialect, versions, want)
		}
		for i := range versions {
			if versions[i] != want[i] {
				t.Fatalf("%s versions = %v, want %v", dialect, versions, want)
			}
		}
	}
}

func TestNewRunnerRejectsUnknownDialect(t *testing.T) {
	if _, err := NewRunner("oracle"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestUpAndDownAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	dialect, err := store.Lookup("sqlite")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	db, err := store.Open(ctx, store.Options{Dialect: dialect, DSN: filepath.Join(t.TempDir(), "blog.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	runner, err := NewRunner("sqlite")
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	applied, err := runner.Up(ctx, db, 0)
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if applied != 2 {
		t.Fatalf("Up() applied = %d, want 2", applied)
	}
	if again, err := runner.Up(ctx, db, 0); err != nil || again != 0 {
		t.Fatalf("second Up() = %d, %v; want 0, nil", again, err)
	}
	for _, table := range []string{"users", "posts", "comments"} {
		var count int
		if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table); err != nil {
			t.Fatalf("lookup table %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("table %s missing after Up", table)
		}
	}

	states, err := runner.Status(ctx, db)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, state := range states {
		if !state.Applied {
			t.Fatalf("migration %d not applied", state.Version)
		}
	}

	rolled, err := runner.Down(ctx, db, 2)
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}
	if rolled != 2 {
		t.Fatalf("Down() rolled = %d, want 2", rolled)
	}
	var remaining int
	if err := db.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`); err != nil {
		t.Fatalf("lookup users: %v", err)
	}
	if remaining != 0 {
		t.Fatal("users table still present after Down")
	}
}

func TestUpRebindsVersionPlaceholderForPostgres(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = rawDB.Close() }()
	db := sqlx.NewDb(rawDB, "pgx")

	runner := &Runner{
		fsys: fstest.MapFS{
			"sql/postgres/000001_one.up.sql":   {Data: []byte("CREATE TABLE one (id INT);")},
			"sql/postgres/000001_one.down.sql": {Data: []byte("DROP TABLE one;")},
		},
		dir: "sql/postgres",
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS talkdb_schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM talkdb_schema_migrations ORDER BY version ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE one (id INT);")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO talkdb_schema_migrations (version) VALUES ($1)")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := runner.Up(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if applied != 1 {
		t.Fatalf("Up() applied = %d", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpStopsAfterSteps(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = rawDB.Close() }()
	db := sqlx.NewDb(rawDB, "sqlite")

	runner := &Runner{
		fsys: fstest.MapFS{
			"sql/sqlite/000001_one.up.sql":   {Data: []byte("CREATE TABLE one (id INT);")},
			"sql/sqlite/000001_one.down.sql": {Data: []byte("DROP TABLE one;")},
			"sql/sqlite/000002_two.up.sql":   {Data: []byte("CREATE TABLE two (id INT);")},
			"sql/sqlite/000002_two.down.sql": {Data: []byte("DROP TABLE two;")},
		},
		dir: "sql/sqlite",
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS talkdb_schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM talkdb_schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE one (id INT);")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO talkdb_schema_migrations (version) VALUES (?)")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := runner.Up(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("Up() error = %v", err)
	}
	if applied != 1 {
		t.Fatalf("Up() applied = %d, want 1", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
