package schedule

import "errors"

// Schedule errors
var (
	ErrInvalidStep        = errors.New("invalid report step")
	ErrBlockOutOfRange    = errors.New("schedule block index out of range")
	ErrNegativeTStep      = errors.New("negative TSTEP value")
	ErrDatesNotMonotonic  = errors.New("DATES not monotonic")
	ErrRestartMisaligned  = errors.New("restart time not reached exactly")
	ErrEmptyTStep         = errors.New("TSTEP without steps")
	ErrInvalidRestartStep = errors.New("invalid restart report step")
)
