package f439

import (
	"os"

	"github.com/pkg/errors"
)

// Kind classifies build failures. Use errors.Is(err, ErrDiskFull) and
// friends to test for a kind.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrArgument     Kind = "invalid argument"
	ErrImageCreate  Kind = "creating image"
	ErrResize       Kind = "resizing image"
	ErrMap          Kind = "mapping image"
	ErrSourceOpen   Kind = "opening input"
	ErrRead         Kind = "reading input"
	ErrDiskFull     Kind = "disk is full"
	ErrWrite        Kind = "writing image"
	ErrFileTooLarge Kind = "input too large"
)

// Error is returned by all operations in this package.
type Error struct {
	Kind Kind
	Path string // image or input path, if known
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newError(kind Kind, path string, err error) error {
	return errors.WithStack(&Error{Kind: kind, Path: path, Err: err})
}

// setupKind maps a blockstore.Create failure to the step which failed.
func setupKind(err error) Kind {
	var pe *os.PathError
	if errors.As(err, &pe) {
		switch pe.Op {
		case "truncate":
			return ErrResize
		case "mmap":
			return ErrMap
		}
	}
	return ErrImageCreate
}
