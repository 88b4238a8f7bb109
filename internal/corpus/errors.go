package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks a missing or unreadable input file.
	ErrIO = errors.New("io error")
	// ErrLengthMismatch marks corpora with different line counts.
	ErrLengthMismatch = errors.New("length mismatch")
)

// IOError reports the file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// LengthMismatchError reports a corpus whose line count differs from the source.
type LengthMismatchError struct {
	Path     string
	Expected int
	Got      int
	Against  string
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s has %d lines, expected %d (as in %s)", e.Path, e.Got, e.Expected, e.Against)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }
