package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mvc/pkg/query"
)

// Database is a long-lived, shared connection pool for one named configuration.
// A Database whose Open failed keeps the error and cannot hand out connections.
type Database struct {
	err     error
	pool    *pgxpool.Pool
	sql     *sql.DB
	name    string
	driver  string
	dialect query.Dialect
}

// New wraps an already opened *sql.DB.
func New(name string, sqlDB *sql.DB, dialect query.Dialect) *Database {
	driver := DriverSQLite
	if dialect == query.DialectPostgres {
		driver = DriverPostgres
	}
	return &Database{name: name, sql: sqlDB, driver: driver, dialect: dialect}
}

// Name returns the configuration name.
func (d *Database) Name() string { return d.name }

// Driver returns the configured driver name.
func (d *Database) Driver() string { return d.driver }

// Dialect returns the query dialect statements for this database must use.
func (d *Database) Dialect() query.Dialect { return d.dialect }

// DB exposes the underlying pool. It is nil when the database failed to open.
func (d *Database) DB() *sql.DB { return d.sql }

// Err reports why the database is unusable, or nil.
func (d *Database) Err() error { return d.err }

// Usable reports whether connections can be acquired.
func (d *Database) Usable() bool {
	return d != nil && d.err == nil && d.sql != nil
}

// Close releases the pool.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.sql != nil {
		err = d.sql.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// Healthcheck returns a closure that validates connectivity for health endpoints.
func Healthcheck(d *Database) func(context.Context) error {
	return func(ctx context.Context) error {
		if !d.Usable() {
			if d != nil && d.err != nil {
				return errors.Join(ErrHealthcheckFailed, d.err)
			}
			return ErrHealthcheckFailed
		}
		if err := d.sql.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a function that closes every given database.
// Use with mvc.WithShutdownHook().
//
// Example:
//
//	app := mvc.New(
//	    mvc.WithShutdownHook(db.Shutdown(databases...)),
//	)
func Shutdown(databases ...*Database) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, d := range databases {
			if err := d.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// WithTx executes fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// If fn panics, the transaction is rolled back and the panic is re-raised.
// If fn succeeds, the transaction is committed.
func WithTx(ctx context.Context, d *Database, fn func(tx *sql.Tx) error) error {
	if !d.Usable() {
		return ErrConnectionUnavailable
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
