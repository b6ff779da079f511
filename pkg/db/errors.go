package db

import "errors"

var (
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrUnsupportedDriver        = errors.New("db: unsupported driver")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrSetDialect               = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("db migrator: failed to apply migrations")

	ErrQueryFailed           = errors.New("db: query failed")
	ErrNoRows                = errors.New("db: no rows in result set")
	ErrConnectionUnavailable = errors.New("db: connection unavailable")
	ErrDialectMismatch       = errors.New("db: statement dialect does not match database")
)

// QueryError carries the failing statement text next to the driver error.
// It matches both ErrQueryFailed and the driver error with errors.Is.
type QueryError struct {
	Err      error
	Database string
	SQL      string
}

func (e *QueryError) Error() string {
	return "db: query failed on " + e.Database + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() []error {
	return []error{ErrQueryFailed, e.Err}
}
