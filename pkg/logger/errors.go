package logger

import "errors"

var (
	ErrFlushed           = errors.New("logger: buffer already flushed")
	ErrUnknownLocation   = errors.New("logger: unknown log location")
	ErrInvalidSinkConfig = errors.New("logger: invalid sink configuration")
	ErrSinkWrite         = errors.New("logger: sink write failed")
)
