package query

import (
	"database/sql"
	"slices"
)

// Kind is the statement action.
type Kind int

const (
	KindUndefined Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return "UNDEFINED"
	}
}

// Dialect selects the placeholder and LIMIT syntax.
type Dialect int

const (
	// DialectNamed renders ":name" placeholders and "LIMIT offset, count".
	DialectNamed Dialect = iota
	// DialectPostgres renders "$n" placeholders and "LIMIT count OFFSET offset".
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "named"
}

// Wildcard selects every column.
const Wildcard = "*"

// Value is one column assignment of an INSERT or UPDATE.
type Value struct {
	Column string
	Value  any
}

// Values is an ordered list of column assignments.
// Column and placeholder order in the rendered SQL follows slice order.
type Values []Value

// FromMap converts a map into Values sorted by column name,
// so the rendered statement is stable between runs.
func FromMap(m map[string]any) Values {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	vals := make(Values, 0, len(cols))
	for _, col := range cols {
		vals = append(vals, Value{Column: col, Value: m[col]})
	}
	return vals
}

// Columns returns the column names in order.
func (v Values) Columns() []string {
	cols := make([]string, len(v))
	for i, val := range v {
		cols[i] = val.Column
	}
	return cols
}

// Param is one bound parameter. Name carries no placeholder prefix.
type Param struct {
	Value any
	Name  string
}

// Params holds bound parameters in the order their placeholders appear in the SQL text.
type Params []Param

// Map returns the parameters keyed by placeholder name.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return m
}

// Names returns the placeholder names in order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// Statement is the output of a build: SQL text plus its bound parameters.
type Statement struct {
	Table   string
	SQL     string
	Params  Params
	Kind    Kind
	Dialect Dialect
}

// Args returns driver arguments for the statement's dialect:
// sql.Named values for DialectNamed, positional values for DialectPostgres.
func (s Statement) Args() []any {
	args := make([]any, len(s.Params))
	for i, p := range s.Params {
		if s.Dialect == DialectPostgres {
			args[i] = p.Value
			continue
		}
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

// String returns the SQL text.
func (s Statement) String() string {
	return s.SQL
}
