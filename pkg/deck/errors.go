package deck

import (
	"errors"
	"fmt"
)

// Deck-level errors
var (
	ErrInput           = errors.New("input error")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonth    = errors.New("invalid month name")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrMissingItem     = errors.New("missing item")
	ErrUnbalancedQuote = errors.New("unbalanced quote")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrTooManyValues   = errors.New("too many values in record")
	ErrDaysOutOfRange  = errors.New("number of days out of range")
)

// InputError is a problem with the deck content, tied to the keyword it was
// found in. Err holds the underlying cause when there is one.
type InputError struct {
	Msg      string
	Location Location
	Err      error
}

// NewInputError creates an input error for the keyword at loc.
func NewInputError(msg string, loc Location) *InputError {
	return &InputError{Msg: msg, Location: loc}
}

// WrapInputError attaches keyword location context to err.
func WrapInputError(err error, loc Location) *InputError {
	return &InputError{Msg: err.Error(), Location: loc, Err: err}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("Problem with keyword %s\nIn %s line %d\n%s",
		e.Location.Keyword, e.Location.Filename, e.Location.Line, e.Msg)
}

// Unwrap returns the nested cause.
func (e *InputError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInput.
func (e *InputError) Is(target error) bool {
	return target == ErrInput
}
