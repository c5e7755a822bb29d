// Package store opens the blog database for one of the supported dialects.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

type Dialect struct {
	Name       string
	DriverName string
	readOnly   func(dsn string) string
	writable   func(dsn string) string
}

var dialects = map[string]Dialect{
	"sqlite": {
		Name:       "sqlite",
		DriverName: "sqlite",
		writable:   func(dsn string) string { return sqliteURI(dsn, "") },
		readOnly:   func(dsn string) string { return sqliteURI(dsn, "mode=ro") },
	},
	"duckdb": {
		Name:       "duckdb",
		DriverName: "duckdb",
		writable:   func(dsn string) string { return dsn },
		readOnly:   func(dsn string) string { return appendParam(dsn, "access_mode=READ_ONLY") },
	},
	"postgres": {
		Name:       "postgres",
		DriverName: "pgx",
		writable:   func(dsn string) string { return dsn },
		readOnly:   func(dsn string) string { return appendParam(dsn, "default_transaction_read_only=on") },
	},
}

func Lookup(name string) (Dialect, error) {
	dialect, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
	return dialect, nil
}

// DSN returns the driver-specific data source name. Read-only DSNs make the
// database itself refuse writes where the driver supports it.
func (d Dialect) DSN(dsn string, readOnly bool) string {
	if readOnly {
		return d.readOnly(dsn)
	}
	return d.writable(dsn)
}

type Options struct {
	Dialect  Dialect
	DSN      string
	ReadOnly bool
}

func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if opts.Dialect.DriverName == "" {
		return nil, fmt.Errorf("database dialect is required")
	}

	db, err := sqlx.Open(opts.Dialect.DriverName, opts.Dialect.DSN(opts.DSN, opts.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Dialect.Name, err)
	}
	if opts.Dialect.Name != "postgres" {
		// File databases take a process-level lock; one connection keeps
		// DDL and inserts on the same handle.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", opts.Dialect.Name, err)
	}
	return db, nil
}

type codedError interface {
	Code() int
}

type sqlStateError interface {
	SQLState() string
}

const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
	pgUniqueViolation          = "23505"
)

// IsUniqueViolation reports whether err came from a unique or primary key
// constraint in any supported dialect.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coded codedError
	if errors.As(err, &coded) {
		switch coded.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}
	var state sqlStateError
	if errors.As(err, &state) && state.SQLState() == pgUniqueViolation {
		return true
	}
	message := err.Error()
	for _, marker := range []string{
		"UNIQUE constraint failed",
		"violates unique constraint",
		"violates primary key constraint",
		"Duplicate key",
	} {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

func sqliteURI(dsn, extra string) string {
	uri := dsn
	if !strings.HasPrefix(uri, "file:") {
		uri = "file:" + uri
	}
	if extra != "" {
		uri = appendParam(uri, extra)
	}
	return appendParam(uri, "_pragma=foreign_keys(1)")
}

func appendParam(dsn, param string) string {
	if strings.Contains(dsn, "://") || strings.HasPrefix(dsn, "file:") || !strings.Contains(dsn, "=") {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + param
		}
		return dsn + "?" + param
	}
	// keyword/value connection strings such as "host=localhost dbname=blog"
	return dsn + " " + param
}
