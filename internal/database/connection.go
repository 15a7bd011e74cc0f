// Package database provides the optional SQLite-backed fingerprint store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/choplin/scorerelay/db/migrations"
	"github.com/choplin/scorerelay/internal/config"
	sqldb "github.com/choplin/scorerelay/internal/database/sqlc"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// Context holds the database connection and query interface.
type Context struct {
	DB      *sql.DB
	Queries *sqldb.Queries
}

// CreateDatabase opens (creating if needed) the state database at dbPath and
// applies migrations. An empty dbPath selects config.GetStatePath().
func CreateDatabase(dbPath string) (*Context, error) {
	dsn, err := stateDSN(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state database unreachable: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Context{DB: db, Queries: sqldb.New(db)}, nil
}

func stateDSN(dbPath string) (string, error) {
	if dbPath == "" {
		dbPath = config.GetStatePath()
	}
	if dbPath == ":memory:" {
		return "file::memory:?cache=shared&_pragma=busy_timeout(5000)", nil
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("resolve state database path %q: %w", dbPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
}

// CloseDatabase closes the database connection.
func CloseDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.DB.Close()
}

// ClearDatabase removes every stored fingerprint and returns how many were
// deleted.
func ClearDatabase(ctx *Context) (int64, error) {
	if ctx == nil || ctx.DB == nil {
		return 0, nil
	}

	tx, err := ctx.DB.BeginTx(context.Background(), nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear: %w", err)
	}

	queries := queriesFromContext(ctx).WithTx(tx)
	n, err := queries.DeleteAllFingerprints(context.Background())
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return 0, fmt.Errorf("delete fingerprints: %w (rollback: %w)", err, rbErr)
		}
		return 0, fmt.Errorf("delete fingerprints: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}

	return n, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("load fingerprint migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	target, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("prepare fingerprint schema: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return fmt.Errorf("prepare fingerprint schema: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate fingerprint schema: %w", err)
	}
	return nil
}
