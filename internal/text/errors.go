package text

import (
	"errors"
	"fmt"
)

// ErrInvalidOption marks an option value the tool cannot act on.
var ErrInvalidOption = errors.New("invalid option")

// InvalidOptionError names the offending option and value.
type InvalidOptionError struct {
	Option string
	Value  string
	Err    error
}

func (e *InvalidOptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid -%s %q: %v", e.Option, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid -%s %q", e.Option, e.Value)
}

func (e *InvalidOptionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidOption}
	}
	return []error{ErrInvalidOption, e.Err}
}
