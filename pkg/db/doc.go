// Package db provides the database gateway used by request handlers.
//
// Two layers live here. A [Database] is the shared, long-lived pool for one
// named configuration: PostgreSQL through [github.com/jackc/pgx/v5/pgxpool]
// bridged to database/sql, or sqlite through the pure Go [modernc.org/sqlite]
// driver. A [Gateway] is the request-scoped handle over it: it acquires one
// dedicated connection on first use, executes [query.Statement] values and
// keeps the queue of deferred writes that run in a single transaction at the
// end of the request.
//
// # Opening databases
//
//	databases := db.OpenAll(ctx, map[string]db.Config{
//	    db.DefaultName: {Driver: db.DriverSQLite, DSN: "file:app.db", AutoMigrate: true},
//	}, log)
//
// OpenAll never aborts: a database that fails to open is logged and stays
// registered as unusable, and gateways bound to it fail fast with
// [ErrConnectionUnavailable].
//
// # Per request
//
//	reg := db.NewRegistry(databases, db.WithRegistryLogger(reqLog))
//	defer reg.Close(ctx) // flushes deferred statements, releases connections
//
//	gw := reg.Default()
//	row, err := gw.FetchOne(ctx, stmt)
//	gw.AddDeferred(update) // runs at Close, inside one transaction
//
// Terminal forms:
//
//   - [Gateway.Execute] runs a statement and reports affected rows
//   - [Gateway.FetchOne] returns the first row or [ErrNoRows]
//   - [Gateway.FetchAll] returns every row
//   - [Gateway.InsertID] returns the new row id
//
// With [WithQueryBenchmarks] every statement is wrapped in a benchmark pair
// named query_N, N being the gateway's query counter.
//
// # Migrations
//
// [Migrate] applies the embedded goose migrations for the database dialect.
// They create the Users, Permissions, Sessions, Settings and Logs tables and
// seed the default permission groups and autoloaded settings.
//
// # Error Handling
//
// Statement failures are logged with the statement text and returned as
// [*QueryError], which matches [ErrQueryFailed] and the driver error.
// Returning it up the stack aborts the request; handling it locally is the
// recoverable path.
//
//   - [ErrQueryFailed] - statement execution failed
//   - [ErrNoRows] - FetchOne selected nothing
//   - [ErrConnectionUnavailable] - the database could not be reached
//   - [ErrDialectMismatch] - statement built for another dialect
//   - [ErrFailedToOpenDBConnection] - connection attempts exhausted
//   - [ErrApplyMigrations] - migration failure
package db
