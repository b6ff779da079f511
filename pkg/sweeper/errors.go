package sweeper

import "errors"

var (
	ErrInvalidSchedule = errors.New("sweeper: invalid schedule")
	ErrStopTimeout     = errors.New("sweeper: running sweep did not finish before the deadline")
)
