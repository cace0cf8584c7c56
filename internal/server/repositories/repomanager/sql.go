// Package repomanager provides a concrete RepositoryManager for SQLite and
// PostgreSQL, wiring together repository constructors and database
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/groupshare/internal/dbx"
	"github.com/dmitrijs2005/groupshare/internal/server/migrations"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/groups"
	"github.com/dmitrijs2005/groupshare/internal/server/repositories/members"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// SQLRepositoryManager vends SQL-backed repository implementations for one
// driver and exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect      dbx.Dialect
	gooseDialect string
	migrations   string
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db, m.dialect)
}

// Groups returns a groups.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Groups(db dbx.DBTX) groups.Repository {
	return groups.NewSQLRepository(db, m.dialect)
}

// Members returns a members.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Members(db dbx.DBTX) members.Repository {
	return members.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations of the manager's
// dialect and runs them against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, m.migrations); err != nil {
		return err
	}
	return nil
}

// NewRepositoryManager constructs a RepositoryManager for the given
// database/sql driver name.
func NewRepositoryManager(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverSQLite:
		return &SQLRepositoryManager{
			dialect:      dbx.Question,
			gooseDialect: "sqlite3",
			migrations:   migrations.SQLiteDir,
		}, nil
	case DriverPostgres:
		return &SQLRepositoryManager{
			dialect:      dbx.Dollar,
			gooseDialect: "postgres",
			migrations:   migrations.PostgresDir,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
