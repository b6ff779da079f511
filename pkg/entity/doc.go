// Package entity binds query builders to a request gateway, one table at a time.
//
// A [Table] names a table and carries the request's [db.Gateway]. Its
// Select, Insert, Update and Delete methods return a [Builder] exposing the
// same chain methods as [query.Builder], plus five terminal calls:
//
//   - Execute runs the statement now
//   - ExecuteTransaction queues it for the end-of-request transaction
//   - ExecuteFetch returns the first row
//   - ExecuteFetchAll returns every row
//   - ExecuteInsertID returns the new row id
//
// Exactly one terminal call consumes a chain; any later terminal call on it,
// or on a builder derived from it, fails with [ErrBuilderUsed].
//
//	users := entity.NewUsers(gw)
//	row, err := users.Select("id", "username").
//	    Where("banned", 0).
//	    OrderBy("id", query.Desc).
//	    Limit(0, 10).
//	    ExecuteFetchAll(ctx)
//
// Typed wrappers cover the framework tables: [Users], [Sessions],
// [Settings], [Permissions] and [Logs]. [LogStore] persists flushed request
// logs and plugs into the logger's store sink.
package entity
