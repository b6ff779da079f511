package config

import "errors"

var (
	ErrInvalid           = errors.New("config: invalid configuration")
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrRead              = errors.New("config: failed to read file")
	ErrParse             = errors.New("config: failed to parse file")
)
