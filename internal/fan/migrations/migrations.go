// Package migrations holds the fan database schema.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"engcalc/internal/observability"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

// zapLogger sends goose progress through the process logger instead of
// the standard library one.
type zapLogger struct{}

func (zapLogger) Printf(format string, v ...any) {
	observability.Logger.Sugar().Infof(strings.TrimSpace(format), v...)
}

func (zapLogger) Fatalf(format string, v ...any) {
	observability.Logger.Sugar().Fatalf(strings.TrimSpace(format), v...)
}

// Run applies all pending migrations.
func Run(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(zapLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Version reports the schema version currently applied.
func Version(db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.GetDBVersion(db)
}
