package storage

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/2beens/fitlog/internal/storage/migrations"

	"github.com/pressly/goose/v3"
)

// goose keeps its dialect and base FS in package globals.
var migrateMu sync.Mutex

// Migrate applies the pending migrations of the given goose dialect
// ("sqlite" or "postgres").
func Migrate(db *sql.DB, dialect string) error {
	dir := migrations.DirSQLite
	if dialect == "postgres" {
		dir = migrations.DirPostgres
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
