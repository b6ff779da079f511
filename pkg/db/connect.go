package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/mvc/pkg/query"
)

// Connect establishes a PostgreSQL connection pool with retry logic.
// Uses linear backoff to handle transient network issues without overwhelming the database.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	cfg = cfg.WithDefaults()
	connConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MinConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		conn, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			if err := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); err != nil {
				return nil, err
			}
			continue
		}

		if err := conn.Ping(ctx); err != nil {
			conn.Close()
			if err := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); err != nil {
				return nil, err
			}
			continue
		}

		return conn, nil
	}

	return nil, ErrFailedToOpenDBConnection
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// Open connects the named database described by cfg.
// PostgreSQL goes through a pgx pool bridged to database/sql; sqlite uses the
// pure Go modernc driver. With AutoMigrate set, framework migrations run before returning.
func Open(ctx context.Context, name string, cfg Config, log *slog.Logger) (*Database, error) {
	cfg = cfg.WithDefaults()
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	d := &Database{name: name, driver: cfg.Driver}
	switch cfg.Driver {
	case DriverPostgres, "pgx":
		pool, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.driver = DriverPostgres
		d.pool = pool
		d.sql = stdlib.OpenDBFromPool(pool)
		d.dialect = query.DialectPostgres

	case DriverSQLite:
		sqlDB, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, errors.Join(ErrFailedToOpenDBConnection, err)
		}
		sqlDB.SetMaxOpenConns(int(cfg.MaxOpenConns))
		sqlDB.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
		sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, errors.Join(ErrFailedToOpenDBConnection, err)
		}
		d.sql = sqlDB
		d.dialect = query.DialectNamed

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, d, cfg.MigrationsTable, log); err != nil {
			_ = d.Close()
			return nil, err
		}
	}

	return d, nil
}

// OpenAll opens every configured database. A failure never aborts the call:
// it is logged and the name stays registered as an unusable database, so
// gateways bound to it fail fast with ErrConnectionUnavailable.
func OpenAll(ctx context.Context, configs map[string]Config, log *slog.Logger) map[string]*Database {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make(map[string]*Database, len(configs))
	for _, name := range names {
		d, err := Open(ctx, name, configs[name], log)
		if err != nil {
			log.ErrorContext(ctx, "Could not connect to database.",
				slog.String("database", name),
				slog.Any("error", err),
			)
			d = &Database{name: name, driver: configs[name].Driver, err: err}
		}
		out[name] = d
	}
	return out
}
