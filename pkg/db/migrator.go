package db

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"

	"github.com/dmitrymomot/mvc/pkg/query"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies the framework migrations (Users, Permissions, Sessions,
// Settings, Logs and their seed rows) for the database's dialect.
// It uses a goose provider instead of the package-level goose state, so
// several databases can migrate concurrently.
func Migrate(ctx context.Context, d *Database, migrationTable string, log *slog.Logger) error {
	if !d.Usable() {
		return ErrConnectionUnavailable
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if migrationTable == "" {
		migrationTable = "schema_migrations"
	}

	dir, dialect := "migrations/sqlite", goosedb.DialectSQLite3
	if d.dialect == query.DialectPostgres {
		dir, dialect = "migrations/postgres", goosedb.DialectPostgres
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	store, err := goosedb.NewStore(dialect, migrationTable)
	if err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	provider, err := goose.NewProvider("", d.sql, fsys, goose.WithStore(store))
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	for _, res := range results {
		log.InfoContext(ctx, "applied migration",
			slog.String("database", d.name),
			slog.Int64("version", res.Source.Version),
			slog.Duration("duration", res.Duration),
		)
	}
	return nil
}
