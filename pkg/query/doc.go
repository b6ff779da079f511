// Package query builds parameterized SQL statements from a fluent call chain.
//
// A [Builder] is an immutable value: every chain method returns a new Builder
// and leaves the receiver untouched. Identifiers (tables, columns) are written
// verbatim into the SQL text, values are always bound through placeholders.
//
// # Usage
//
//	stmt, err := query.Select("Sessions", "Sessions.id", "Users.username").
//		Join("Users_id").
//		Where("Sessions.id", 42).
//		Limit(0, 1).
//		Build()
//	if err != nil {
//		return err
//	}
//	rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Args()...)
//
// # Rendering
//
// Clauses are rendered in a fixed order: action and column list, FROM, JOIN,
// WHERE, GROUP BY, ORDER BY, LIMIT, RETURNING. WHERE and IN values become
// placeholders named param_0, param_1, ... in the order they were added.
// INSERT and UPDATE values use the column name as the placeholder name.
//
// Two dialects are supported:
//
//   - [DialectNamed]: ":name" placeholders and "LIMIT offset, count" (SQLite, MySQL)
//   - [DialectPostgres]: "$n" placeholders and "LIMIT count OFFSET offset"
//
// # Single use
//
// A chain is consumed by its terminal [Builder.Build] call. Building the same
// chain (or any builder derived from the same constructor call) a second time
// fails with [ErrBuilderConsumed].
//
// # Errors
//
// Malformed arguments are recorded while chaining and reported by Build,
// wrapped with [ErrConfiguration], before anything reaches the database.
package query
