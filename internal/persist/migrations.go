package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"
)

var migrationDirs = map[string]string{
	dialectPostgres: "migrations/postgres",
	dialectSQLite:   "migrations/sqlite",
}

// RunMigrations applies all pending migrations of dialect to db.
func RunMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	dir, ok := migrationDirs[dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// MigratePostgres runs the Postgres migrations over the pgx pool.
func MigratePostgres(ctx context.Context, db *DB) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()
	return RunMigrations(ctx, sqlDB, dialectPostgres)
}
