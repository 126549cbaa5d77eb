package osc

import (
	"errors"
	"fmt"
)

// Decode error kinds. Every failure surfaced by this package wraps exactly
// one of these sentinels, so callers can classify with errors.Is.
var (
	ErrTruncatedBuffer     = errors.New("truncated buffer")
	ErrInvalidEncoding     = errors.New("invalid string encoding")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidTypeTag      = errors.New("invalid type tag string")
	ErrUnsupportedAtomType = errors.New("unsupported atom type")
	ErrNotABundle          = errors.New("not a bundle")
	ErrBundleTooDeep       = errors.New("bundle nested too deep")
	ErrElementSize         = errors.New("element size mismatch")
)

// DecodeError reports a decode failure together with the absolute byte
// offset within the datagram at which it was detected.
type DecodeError struct {
	Kind   error
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("offset %d: %v", e.Offset, e.Kind)
	}
	return fmt.Sprintf("offset %d: %v: %s", e.Offset, e.Kind, e.Detail)
}

func (e *DecodeError) Unwrap() error { return e.Kind }

// Errorf builds a DecodeError of the given kind at the given offset.
func Errorf(kind error, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
