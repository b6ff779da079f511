package entity

import (
	"context"
	"errors"

	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/query"
)

// Table binds a table name to a request gateway.
// It is a cheap value; construct one wherever needed.
type Table struct {
	gw   *db.Gateway
	name string
}

// NewTable returns a Table for name on gw.
func NewTable(gw *db.Gateway, name string) Table {
	return Table{gw: gw, name: name}
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// Gateway returns the bound gateway.
func (t Table) Gateway() *db.Gateway { return t.gw }

// Select starts a SELECT. No columns means every column.
func (t Table) Select(columns ...string) Builder {
	return t.wrap(query.Select(t.name, columns...))
}

// Insert starts an INSERT with ordered values.
func (t Table) Insert(values query.Values) Builder {
	return t.wrap(query.Insert(t.name, values))
}

// InsertMap starts an INSERT from a map. Columns are sorted by name.
func (t Table) InsertMap(values map[string]any) Builder {
	return t.Insert(query.FromMap(values))
}

// Update starts an UPDATE with ordered values.
func (t Table) Update(values query.Values) Builder {
	return t.wrap(query.Update(t.name, values))
}

// UpdateMap starts an UPDATE from a map. Columns are sorted by name.
func (t Table) UpdateMap(values map[string]any) Builder {
	return t.Update(query.FromMap(values))
}

// Delete starts a DELETE.
func (t Table) Delete() Builder {
	return t.wrap(query.Delete(t.name))
}

func (t Table) wrap(q query.Builder) Builder {
	return Builder{gw: t.gw, q: q}
}

// Builder is a query.Builder bound to a gateway. Like query.Builder it is an
// immutable value, and exactly one terminal call consumes the chain.
type Builder struct {
	gw *db.Gateway
	q  query.Builder
}

func (b Builder) with(q query.Builder) Builder {
	b.q = q
	return b
}

func (b Builder) Where(column string, value any, operator ...string) Builder {
	return b.with(b.q.Where(column, value, operator...))
}

func (b Builder) OrWhere(column string, value any, operator ...string) Builder {
	return b.with(b.q.OrWhere(column, value, operator...))
}

func (b Builder) WhereIn(column string, values []any) Builder {
	return b.with(b.q.WhereIn(column, values))
}

func (b Builder) WhereNotIn(column string, values []any) Builder {
	return b.with(b.q.WhereNotIn(column, values))
}

func (b Builder) OrWhereIn(column string, values []any) Builder {
	return b.with(b.q.OrWhereIn(column, values))
}

func (b Builder) Join(localColumn string, foreignRef ...string) Builder {
	return b.with(b.q.Join(localColumn, foreignRef...))
}

func (b Builder) JoinOn(localColumn, foreignRef, operator, joinType string) Builder {
	return b.with(b.q.JoinOn(localColumn, foreignRef, operator, joinType))
}

func (b Builder) GroupBy(columns ...string) Builder {
	return b.with(b.q.GroupBy(columns...))
}

func (b Builder) OrderBy(column string, direction ...string) Builder {
	return b.with(b.q.OrderBy(column, direction...))
}

func (b Builder) Limit(offset, count int) Builder {
	return b.with(b.q.Limit(offset, count))
}

func (b Builder) Distinct() Builder {
	return b.with(b.q.Distinct())
}

// build consumes the chain and renders it for the gateway's dialect.
// PostgreSQL inserts get RETURNING id, so every table needs an id column.
func (b Builder) build() (query.Statement, error) {
	q := b.q.WithDialect(b.gw.Dialect())
	if q.Kind() == query.KindInsert && b.gw.Dialect() == query.DialectPostgres {
		q = q.Returning("id")
	}

	stmt, err := q.Build()
	if errors.Is(err, query.ErrBuilderConsumed) {
		return query.Statement{}, ErrBuilderUsed
	}
	return stmt, err
}

// Statement consumes the chain and returns the rendered statement without running it.
func (b Builder) Statement() (query.Statement, error) {
	return b.build()
}

// Execute runs the statement and reports the affected row count.
func (b Builder) Execute(ctx context.Context) (int64, error) {
	stmt, err := b.build()
	if err != nil {
		return 0, err
	}
	return b.gw.Execute(ctx, stmt)
}

// ExecuteTransaction queues the statement on the gateway's deferred queue.
// It runs with the other deferred writes when the request ends.
func (b Builder) ExecuteTransaction() error {
	stmt, err := b.build()
	if err != nil {
		return err
	}
	b.gw.AddDeferred(stmt)
	return nil
}

// ExecuteFetch returns the first selected row or db.ErrNoRows.
func (b Builder) ExecuteFetch(ctx context.Context) (db.Row, error) {
	stmt, err := b.build()
	if err != nil {
		return nil, err
	}
	return b.gw.FetchOne(ctx, stmt)
}

// ExecuteFetchAll returns every selected row.
func (b Builder) ExecuteFetchAll(ctx context.Context) ([]db.Row, error) {
	stmt, err := b.build()
	if err != nil {
		return nil, err
	}
	return b.gw.FetchAll(ctx, stmt)
}

// ExecuteInsertID runs an INSERT and returns the new row id.
func (b Builder) ExecuteInsertID(ctx context.Context) (int64, error) {
	stmt, err := b.build()
	if err != nil {
		return 0, err
	}
	return b.gw.InsertID(ctx, stmt)
}
