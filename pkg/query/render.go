package query

import (
	"strconv"
	"strings"
)

// renderer writes SQL text and collects parameters in placeholder order.
type renderer struct {
	params  Params
	sql     strings.Builder
	dialect Dialect
	next    int
}

// placeholder records a parameter and returns its placeholder text.
func (r *renderer) placeholder(name string, value any) string {
	r.params = append(r.params, Param{Name: name, Value: value})
	if r.dialect == DialectPostgres {
		return "$" + strconv.Itoa(len(r.params))
	}
	return ":" + name
}

func (r *renderer) whereParam(value any) string {
	name := "param_" + strconv.Itoa(r.next)
	r.next++
	return r.placeholder(name, value)
}

func (r *renderer) render(b Builder) {
	r.action(b)
	r.joins(b)
	r.where(b)
	r.groupBy(b)
	r.orderBy(b)
	r.limit(b)
	r.returning(b)
}

func (r *renderer) action(b Builder) {
	s := &r.sql
	switch b.kind {
	case KindSelect:
		s.WriteString("SELECT")
		if b.distinct {
			s.WriteString(" DISTINCT")
		}
		s.WriteString("\n\t")
		s.WriteString(strings.Join(b.columns, ",\n\t"))
		s.WriteString("\nFROM ")
		s.WriteString(b.table)
		s.WriteString("\n")

	case KindInsert:
		cols := b.values.Columns()
		s.WriteString("INSERT INTO ")
		s.WriteString(b.table)
		s.WriteString(" (")
		s.WriteString(strings.Join(cols, ", "))
		s.WriteString(")\nVALUES (")
		for i, v := range b.values {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(r.placeholder(v.Column, v.Value))
		}
		s.WriteString(")")

	case KindUpdate:
		s.WriteString("UPDATE ")
		s.WriteString(b.table)
		s.WriteString(" SET ")
		for i, v := range b.values {
			if i > 0 {
				s.WriteString(",\n\t")
			}
			s.WriteString(v.Column)
			s.WriteString(" = ")
			s.WriteString(r.placeholder(v.Column, v.Value))
		}
		s.WriteString("\n")

	case KindDelete:
		s.WriteString("DELETE FROM ")
		s.WriteString(b.table)
		s.WriteString("\n")
	}
}

func (r *renderer) joins(b Builder) {
	for _, j := range b.joins {
		alias := "J" + j.local
		r.sql.WriteString(j.typ + " JOIN " + j.table + " AS " + alias + "\n")
		r.sql.WriteString("\tON " + b.table + "." + j.local + " " + j.operator + " " + alias + "." + j.foreign + "\n")
	}
}

func (r *renderer) where(b Builder) {
	if len(b.where) == 0 {
		return
	}
	s := &r.sql
	s.WriteString("WHERE\n")
	for _, node := range b.where {
		switch node.typ {
		case nodeConnective:
			s.WriteString(" " + node.connective + "\n")
		case nodeCompare:
			s.WriteString("\t" + node.column + " " + node.operator + " " + r.whereParam(node.value))
		case nodeIn:
			s.WriteString("\t" + node.column)
			if node.negate {
				s.WriteString(" NOT")
			}
			s.WriteString(" IN(")
			for i, v := range node.values {
				if i > 0 {
					s.WriteString(", ")
				}
				s.WriteString(r.whereParam(v))
			}
			s.WriteString(")")
		}
	}
	s.WriteString("\n")
}

func (r *renderer) groupBy(b Builder) {
	if len(b.groupBy) == 0 {
		return
	}
	r.sql.WriteString("GROUP BY " + strings.Join(b.groupBy, ",\n\t") + "\n")
}

func (r *renderer) orderBy(b Builder) {
	if len(b.orderBy) == 0 {
		return
	}
	keys := make([]string, len(b.orderBy))
	for i, o := range b.orderBy {
		keys[i] = o.column
		if o.direction != "" {
			keys[i] += " " + o.direction
		}
	}
	r.sql.WriteString("ORDER BY " + strings.Join(keys, ",\n\t") + "\n")
}

func (r *renderer) limit(b Builder) {
	if b.limit == nil {
		return
	}
	offset, count := strconv.Itoa(b.limit.offset), strconv.Itoa(b.limit.count)
	if r.dialect == DialectPostgres {
		r.sql.WriteString("LIMIT " + count + " OFFSET " + offset)
		return
	}
	r.sql.WriteString("LIMIT " + offset + ", " + count)
}

func (r *renderer) returning(b Builder) {
	if len(b.returning) == 0 {
		return
	}
	if !strings.HasSuffix(r.sql.String(), "\n") {
		r.sql.WriteString("\n")
	}
	r.sql.WriteString("RETURNING " + strings.Join(b.returning, ", "))
}
