package naming

import "errors"

var ErrUnknownConvention = errors.New("naming: unknown convention")
