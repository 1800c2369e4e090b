package ports

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by an extraction matches exactly
// one of these with errors.Is.
var (
	ErrOpen           = errors.New("open failed")
	ErrNoVideoStream  = errors.New("no video stream")
	ErrSeek           = errors.New("seek failed")
	ErrDecode         = errors.New("decode failed")
	ErrConversion     = errors.New("conversion failed")
	ErrNoFrameDecoded = errors.New("no frame decoded")
	ErrWrite          = errors.New("write failed")
)

// StageError attaches an error kind and the failing operation to an
// underlying cause.
type StageError struct {
	Kind error
	Op   string
	Err  error
}

// NewError builds a StageError. err may be nil.
func NewError(kind error, op string, err error) *StageError {
	return &StageError{Kind: kind, Op: op, Err: err}
}

// Errorf builds a StageError with a formatted cause.
func Errorf(kind error, op string, format string, args ...interface{}) *StageError {
	return &StageError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorKind returns the kind sentinel err matches, or nil.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrOpen, ErrNoVideoStream, ErrSeek, ErrDecode, ErrConversion, ErrNoFrameDecoded, ErrWrite} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
