package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one fetched row keyed by column name.
// Byte slices from the driver are stored as strings.
// Accessors match column names case-insensitively when no exact key exists,
// since PostgreSQL folds unquoted identifiers to lower case.
type Row map[string]any

// Get returns the raw column value.
func (r Row) Get(column string) any {
	if v, ok := r[column]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return nil
}

// String returns the column rendered as text. NULL and missing columns yield "".
func (r Row) String(column string) string {
	switch v := r.Get(column).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer. Text columns are parsed; anything
// unparsable yields 0.
func (r Row) Int64(column string) int64 {
	switch v := r.Get(column).(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// NullInt64 is Int64 that keeps NULL apart from zero.
func (r Row) NullInt64(column string) sql.NullInt64 {
	if r.IsNull(column) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: r.Int64(column), Valid: true}
}

// Bool reads boolean-like columns stored as 0/1, "0"/"1", or native booleans.
func (r Row) Bool(column string) bool {
	switch v := r.Get(column).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return r.Int64(column) != 0
	}
}

// IsNull reports whether the column is NULL or absent.
func (r Row) IsNull(column string) bool {
	return r.Get(column) == nil
}

// scanRows reads at most limit rows (0 means all) into Row values.
func scanRows(rows *sql.Rows, limit int) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)

		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, rows.Err()
}
