package query

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

// Connectives between WHERE predicates.
const (
	And = "AND"
	Or  = "OR"
)

// Join types.
const (
	LeftJoin  = "LEFT"
	RightJoin = "RIGHT"
	InnerJoin = "INNER"
)

// Order directions.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedParam     = regexp.MustCompile(`^param_[0-9]+$`)

	operators = map[string]bool{
		"=": true, "!=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true,
		"LIKE": true, "NOT LIKE": true, "IS": true, "IS NOT": true,
	}
	joinTypes  = map[string]bool{LeftJoin: true, RightJoin: true, InnerJoin: true, "FULL": true, "CROSS": true}
	directions = map[string]bool{Asc: true, Desc: true, "": true}
)

type nodeType int

const (
	nodeConnective nodeType = iota
	nodeCompare
	nodeIn
)

// whereNode is either a connective or a predicate.
type whereNode struct {
	value      any
	column     string
	operator   string
	connective string
	values     []any
	typ        nodeType
	negate     bool
}

type join struct {
	local    string
	table    string
	foreign  string
	operator string
	typ      string
}

type order struct {
	column    string
	direction string
}

type limit struct {
	offset int
	count  int
}

// buildState is shared by every builder derived from one constructor call.
type buildState struct {
	consumed atomic.Bool
}

// Builder describes one statement. The zero value is an UNDEFINED builder.
type Builder struct {
	err       error
	state     *buildState
	limit     *limit
	table     string
	columns   []string
	values    Values
	where     []whereNode
	joins     []join
	groupBy   []string
	orderBy   []order
	returning []string
	kind      Kind
	dialect   Dialect
	distinct  bool
}

// New returns a builder for table with no action set.
// Building it fails until one of the action constructors is used.
func New(table string) Builder {
	return Builder{table: table, state: &buildState{}}
}

// Select starts a SELECT. No columns means the wildcard.
func Select(table string, columns ...string) Builder {
	b := New(table)
	b.kind = KindSelect
	if len(columns) == 0 {
		columns = []string{Wildcard}
	}
	b.columns = append([]string(nil), columns...)
	return b
}

// Insert starts an INSERT with the given ordered values.
func Insert(table string, values Values) Builder {
	b := New(table)
	b.kind = KindInsert
	b.values = append(Values(nil), values...)
	return b
}

// Update starts an UPDATE setting the given ordered values.
func Update(table string, values Values) Builder {
	b := New(table)
	b.kind = KindUpdate
	b.values = append(Values(nil), values...)
	return b
}

// Delete starts a DELETE.
func Delete(table string) Builder {
	b := New(table)
	b.kind = KindDelete
	return b
}

// Kind reports the statement action.
func (b Builder) Kind() Kind { return b.kind }

// Table reports the statement's table.
func (b Builder) Table() string { return b.table }

// clone copies every slice so the returned builder never aliases the receiver.
func (b Builder) clone() Builder {
	b.columns = append([]string(nil), b.columns...)
	b.values = append(Values(nil), b.values...)
	b.where = append([]whereNode(nil), b.where...)
	b.joins = append([]join(nil), b.joins...)
	b.groupBy = append([]string(nil), b.groupBy...)
	b.orderBy = append([]order(nil), b.orderBy...)
	b.returning = append([]string(nil), b.returning...)
	if b.limit != nil {
		l := *b.limit
		b.limit = &l
	}
	return b
}

func (b Builder) fail(format string, args ...any) Builder {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...)
	}
	return b
}

// WithDialect selects the rendering dialect.
func (b Builder) WithDialect(d Dialect) Builder {
	b = b.clone()
	b.dialect = d
	return b
}

// Distinct turns a SELECT into SELECT DISTINCT.
func (b Builder) Distinct() Builder {
	b = b.clone()
	b.distinct = true
	return b
}

// Where adds "column op value" joined to previous predicates with AND.
// The operator defaults to "=".
func (b Builder) Where(column string, value any, operator ...string) Builder {
	op := "="
	if len(operator) > 0 {
		op = operator[0]
	}
	return b.WhereConnective(column, value, op, And)
}

// OrWhere adds "column op value" joined to previous predicates with OR.
func (b Builder) OrWhere(column string, value any, operator ...string) Builder {
	op := "="
	if len(operator) > 0 {
		op = operator[0]
	}
	return b.WhereConnective(column, value, op, Or)
}

// WhereConnective adds a comparison with an explicit operator and connective.
func (b Builder) WhereConnective(column string, value any, operator, connective string) Builder {
	operator = strings.ToUpper(strings.TrimSpace(operator))
	if !operators[operator] {
		return b.fail("unsupported operator %q on column %q", operator, column)
	}
	b = b.connect(connective)
	b.where = append(b.where, whereNode{
		typ:      nodeCompare,
		column:   column,
		value:    value,
		operator: operator,
	})
	return b
}

// WhereIn adds "column IN(values...)" joined with AND.
func (b Builder) WhereIn(column string, values []any) Builder {
	return b.whereIn(column, values, false, And)
}

// WhereNotIn adds "column NOT IN(values...)" joined with AND.
func (b Builder) WhereNotIn(column string, values []any) Builder {
	return b.whereIn(column, values, true, And)
}

// OrWhereIn adds "column IN(values...)" joined with OR.
func (b Builder) OrWhereIn(column string, values []any) Builder {
	return b.whereIn(column, values, false, Or)
}

func (b Builder) whereIn(column string, values []any, negate bool, connective string) Builder {
	if len(values) == 0 {
		return b.fail("empty value list for IN on column %q", column)
	}
	b = b.connect(connective)
	b.where = append(b.where, whereNode{
		typ:    nodeIn,
		column: column,
		values: append([]any(nil), values...),
		negate: negate,
	})
	return b
}

// connect clones b and appends a connective node unless b has no predicate yet.
func (b Builder) connect(connective string) Builder {
	b = b.clone()
	connective = strings.ToUpper(connective)
	if connective != And && connective != Or {
		return b.fail("unsupported connective %q", connective)
	}
	if len(b.where) > 0 {
		b.where = append(b.where, whereNode{typ: nodeConnective, connective: connective})
	}
	return b
}

// Join adds a LEFT JOIN on localColumn using "=".
// Without a reference the foreign table and column come from splitting
// localColumn on its first underscore ("Users_id" joins Users.id).
// A reference is written as "Table.column".
func (b Builder) Join(localColumn string, foreignRef ...string) Builder {
	ref := ""
	if len(foreignRef) > 0 {
		ref = foreignRef[0]
	}
	return b.JoinOn(localColumn, ref, "=", LeftJoin)
}

// JoinOn adds a join with an explicit reference, operator and type.
// An empty ref falls back to the underscore convention of Join.
func (b Builder) JoinOn(localColumn, ref, operator, joinType string) Builder {
	var table, column string
	var ok bool
	if ref == "" {
		table, column, ok = strings.Cut(localColumn, "_")
	} else {
		table, column, ok = strings.Cut(ref, ".")
	}
	if !ok || table == "" || column == "" {
		return b.fail("join on %q: reference %q must name a table and a column", localColumn, ref)
	}

	joinType = strings.ToUpper(joinType)
	if !joinTypes[joinType] {
		return b.fail("unsupported join type %q", joinType)
	}
	operator = strings.TrimSpace(operator)
	if !operators[strings.ToUpper(operator)] {
		return b.fail("unsupported join operator %q", operator)
	}

	b = b.clone()
	b.joins = append(b.joins, join{
		local:    localColumn,
		table:    table,
		foreign:  column,
		operator: operator,
		typ:      joinType,
	})
	return b
}

// GroupBy replaces the GROUP BY column list.
func (b Builder) GroupBy(columns ...string) Builder {
	b = b.clone()
	b.groupBy = append([]string(nil), columns...)
	return b
}

// OrderBy appends an ORDER BY key. An empty direction renders the column alone.
func (b Builder) OrderBy(column string, direction ...string) Builder {
	dir := Asc
	if len(direction) > 0 {
		dir = strings.ToUpper(direction[0])
	}
	if !directions[dir] {
		return b.fail("unsupported order direction %q", dir)
	}
	b = b.clone()
	b.orderBy = append(b.orderBy, order{column: column, direction: dir})
	return b
}

// Limit sets the offset and row count. The last call wins.
func (b Builder) Limit(offset, count int) Builder {
	if offset < 0 || count < 0 {
		return b.fail("negative limit %d, %d", offset, count)
	}
	b = b.clone()
	b.limit = &limit{offset: offset, count: count}
	return b
}

// Returning appends a RETURNING clause.
func (b Builder) Returning(columns ...string) Builder {
	b = b.clone()
	b.returning = append(b.returning, columns...)
	return b
}

// Build renders the statement. It is the chain's only terminal call.
func (b Builder) Build() (Statement, error) {
	if b.state == nil {
		b.state = &buildState{}
	}
	if b.state.consumed.Swap(true) {
		return Statement{}, ErrBuilderConsumed
	}
	if b.err != nil {
		return Statement{}, b.err
	}
	if err := b.validate(); err != nil {
		return Statement{}, err
	}

	r := renderer{dialect: b.dialect}
	r.render(b)

	return Statement{
		Kind:    b.kind,
		Table:   b.table,
		SQL:     r.sql.String(),
		Params:  r.params,
		Dialect: b.dialect,
	}, nil
}

func (b Builder) validate() error {
	if b.kind == KindUndefined {
		return fmt.Errorf("%w: statement kind is not set for table %q", ErrConfiguration, b.table)
	}
	if strings.TrimSpace(b.table) == "" {
		return fmt.Errorf("%w: table name is empty", ErrConfiguration)
	}

	switch b.kind {
	case KindInsert, KindUpdate:
		if len(b.values) == 0 {
			return fmt.Errorf("%w: %s on %q has no values", ErrConfiguration, b.kind, b.table)
		}
		seen := make(map[string]bool, len(b.values))
		for _, v := range b.values {
			if !identifierPattern.MatchString(v.Column) {
				return fmt.Errorf("%w: column %q cannot be used as a placeholder name", ErrConfiguration, v.Column)
			}
			if reservedParam.MatchString(v.Column) {
				return fmt.Errorf("%w: column %q collides with a generated placeholder", ErrConfiguration, v.Column)
			}
			if seen[v.Column] {
				return fmt.Errorf("%w: column %q assigned twice", ErrConfiguration, v.Column)
			}
			seen[v.Column] = true
		}
	}

	if b.kind == KindInsert && (len(b.where) > 0 || len(b.joins) > 0) {
		return fmt.Errorf("%w: INSERT on %q cannot carry WHERE or JOIN clauses", ErrConfiguration, b.table)
	}
	return nil
}
