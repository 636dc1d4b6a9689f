// Package schema runs goose migrations against whichever backend is
// configured, grounded on the teacher's internal/db.RunMigrations
// (goose.SetBaseFS + goose.UpContext against an *sql.DB opened just for
// the migration run). Each backend gets its own embedded migration set
// since their DDL dialects differ (AUTOINCREMENT vs SERIAL vs
// AUTO_INCREMENT), unlike dbops's shared "?"-placeholder query text.
package schema

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// gooseMu serializes Migrate calls: goose.SetBaseFS/SetDialect are
// package-level state, the same singleton the teacher's RunMigrations
// relies on, so only one dialect may be configured at a time.
var gooseMu sync.Mutex

//go:embed migrations/postgres/*.sql
var postgresFS embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteFS embed.FS

//go:embed migrations/mysql/*.sql
var mysqlFS embed.FS

// Migrate opens its own connection to dsn using driverName and brings the
// schema up to the latest migration for dialect ("postgres", "sqlite3",
// or "mysql"). It is always run once at startup before the worker pool
// opens its own long-lived sessions.
func Migrate(ctx context.Context, driverName, dialect, dsn string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer db.Close()

	fsys, dir, err := fsForDialect(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func fsForDialect(dialect string) (embed.FS, string, error) {
	switch dialect {
	case "postgres":
		return postgresFS, "migrations/postgres", nil
	case "sqlite3":
		return sqliteFS, "migrations/sqlite", nil
	case "mysql":
		return mysqlFS, "migrations/mysql", nil
	default:
		return embed.FS{}, "", fmt.Errorf("schema: unknown dialect %q", dialect)
	}
}
