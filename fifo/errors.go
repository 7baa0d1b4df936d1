package fifo

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to check the kind of returned *Error.
var (
	// ErrPath is returned when parent directories of the fifo cannot be
	// resolved or created.
	ErrPath = errors.New("cannot create fifo directory")
	// ErrFifoCreate is returned when the fifo special file cannot be created.
	ErrFifoCreate = errors.New("cannot create fifo")
	// ErrOpen is returned when either side of the fifo cannot be opened.
	ErrOpen = errors.New("cannot open fifo")
	// ErrBrokenPipe is returned when the consumer closed its read end.
	ErrBrokenPipe = errors.New("broken pipe")
	// ErrWrite is returned for write failures other than broken pipe.
	ErrWrite = errors.New("write failed")
	// ErrClose is returned when the write descriptor cannot be released.
	ErrClose = errors.New("close failed")
)

var (
	// ErrInvalidState is returned if transport method cannot be executed at this moment.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidBlockLength is returned when prepare is called with negative block length.
	ErrInvalidBlockLength = errors.New("invalid block length")
)

// Error records a failed fifo operation.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func newError(op, path string, kind, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Kind: kind,
		Err:  err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying system error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if error is of provided kind.
func (e *Error) Is(err error) bool {
	return e.Kind == err
}
