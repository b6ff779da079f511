package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/mvc/pkg/query"
)

// Benchmarker receives paired marks around each query when SQL logging is on.
// The first call with an id starts a mark, the second emits the measurement.
type Benchmarker interface {
	Benchmark(id string, text ...string)
}

// Gateway is the request-scoped handle to one named database.
// It holds a single dedicated connection, acquired on first use and reused by
// every statement of the request, plus the queue of deferred writes.
// A Gateway must not outlive its request.
type Gateway struct {
	database   *Database
	conn       *sql.Conn
	connErr    error
	log        *slog.Logger
	bench      Benchmarker
	name       string
	deferred   []query.Statement
	queries    atomic.Int64
	mu         sync.Mutex
	logQueries bool
}

func newGateway(name string, d *Database, log *slog.Logger, bench Benchmarker, logQueries bool) *Gateway {
	return &Gateway{
		name:       name,
		database:   d,
		log:        log,
		bench:      bench,
		logQueries: logQueries && bench != nil,
	}
}

// Name returns the configuration name the gateway is bound to.
func (g *Gateway) Name() string { return g.name }

// Dialect returns the dialect statements must be built with.
func (g *Gateway) Dialect() query.Dialect {
	if g.database == nil {
		return query.DialectNamed
	}
	return g.database.dialect
}

// QueryCount returns how many statements this gateway executed.
func (g *Gateway) QueryCount() int64 { return g.queries.Load() }

// Opened reports whether a connection was acquired.
func (g *Gateway) Opened() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn != nil
}

// acquire returns the dedicated connection. The first failure is logged and
// remembered; later calls fail fast without touching the pool.
func (g *Gateway) acquire(ctx context.Context) (*sql.Conn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conn != nil {
		return g.conn, nil
	}
	if g.connErr != nil {
		return nil, g.connErr
	}

	if !g.database.Usable() {
		g.connErr = ErrConnectionUnavailable
		if g.database != nil && g.database.err != nil {
			g.connErr = errors.Join(ErrConnectionUnavailable, g.database.err)
		}
	} else {
		conn, err := g.database.sql.Conn(ctx)
		if err != nil {
			g.connErr = errors.Join(ErrConnectionUnavailable, err)
		} else {
			g.conn = conn
			return conn, nil
		}
	}

	g.log.ErrorContext(ctx, "Could not connect to database.",
		slog.String("database", g.name),
		slog.Any("error", g.connErr),
	)
	return nil, g.connErr
}

// run wraps one statement execution with the query counter, the optional
// benchmark pair, and failure logging.
func (g *Gateway) run(ctx context.Context, stmt query.Statement, exec func() error) error {
	if stmt.Dialect != g.Dialect() {
		return g.fail(ctx, stmt, fmt.Errorf("%w: built for %s, database uses %s", ErrDialectMismatch, stmt.Dialect, g.Dialect()))
	}

	n := g.queries.Add(1)
	id := "query_" + strconv.FormatInt(n, 10)
	if g.logQueries {
		g.bench.Benchmark(id)
	}

	err := exec()

	if g.logQueries {
		g.bench.Benchmark(id, stmt.SQL)
	}
	if err != nil {
		return g.fail(ctx, stmt, err)
	}
	return nil
}

func (g *Gateway) fail(ctx context.Context, stmt query.Statement, err error) error {
	g.log.ErrorContext(ctx, "SQL failure",
		slog.String("database", g.name),
		slog.String("statement", stmt.SQL),
		slog.Any("error", err),
	)
	return &QueryError{Database: g.name, SQL: stmt.SQL, Err: err}
}

// Execute runs a statement that returns no rows and reports the affected row count.
func (g *Gateway) Execute(ctx context.Context, stmt query.Statement) (int64, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = g.run(ctx, stmt, func() error {
		res, err := conn.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// FetchOne returns the first selected row, or ErrNoRows.
func (g *Gateway) FetchOne(ctx context.Context, stmt query.Statement) (Row, error) {
	rows, err := g.fetch(ctx, stmt, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// FetchAll returns every selected row. No rows is an empty slice, not an error.
func (g *Gateway) FetchAll(ctx context.Context, stmt query.Statement) ([]Row, error) {
	return g.fetch(ctx, stmt, 0)
}

func (g *Gateway) fetch(ctx context.Context, stmt query.Statement, limit int) ([]Row, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var out []Row
	err = g.run(ctx, stmt, func() error {
		rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Args()...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = scanRows(rows, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

// InsertID runs an INSERT and returns the new row id. On PostgreSQL the
// statement must end with RETURNING id; sqlite reports the last insert rowid.
func (g *Gateway) InsertID(ctx context.Context, stmt query.Statement) (int64, error) {
	conn, err := g.acquire(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	err = g.run(ctx, stmt, func() error {
		if g.Dialect() == query.DialectPostgres {
			return conn.QueryRowContext(ctx, stmt.SQL, stmt.Args()...).Scan(&id)
		}
		res, err := conn.ExecContext(ctx, stmt.SQL, stmt.Args()...)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// AddDeferred queues stmt for the end-of-request transaction without executing it.
func (g *Gateway) AddDeferred(stmt query.Statement) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deferred = append(g.deferred, stmt)
}

// Deferred returns the number of queued statements.
func (g *Gateway) Deferred() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.deferred)
}

// FlushDeferred executes every queued statement in enqueue order inside one
// transaction. The first failure rolls the whole batch back. The queue is
// cleared either way. An empty queue opens no transaction.
func (g *Gateway) FlushDeferred(ctx context.Context) error {
	g.mu.Lock()
	stmts := g.deferred
	g.deferred = nil
	g.mu.Unlock()

	if len(stmts) == 0 {
		return nil
	}

	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return g.fail(ctx, query.Statement{SQL: "BEGIN"}, err)
	}

	for _, stmt := range stmts {
		err := g.run(ctx, stmt, func() error {
			_, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args()...)
			return err
		})
		if err != nil {
			_ = tx.Rollback()
			g.log.ErrorContext(ctx, "Rolled back deferred statements.",
				slog.String("database", g.name),
				slog.Int("statements", len(stmts)),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return g.fail(ctx, query.Statement{SQL: "COMMIT"}, err)
	}

	g.log.DebugContext(ctx, "Executed deferred statements.",
		slog.String("database", g.name),
		slog.Int("statements", len(stmts)),
	)
	return nil
}

// Close returns the dedicated connection to the pool. Queued statements are discarded.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.deferred = nil
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	return err
}
