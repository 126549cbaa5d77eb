package osc

import "fmt"

// Atom is one primitive value in the wire format. The concrete types are
// Int32, Float32, String, Blob and TimeTag; an Atom is immutable once
// decoded.
type Atom interface {
	// TypeTag returns the OSC type tag character for this atom kind.
	TypeTag() byte
}

// Int32 is a 32-bit big-endian signed integer argument.
type Int32 int32

// Float32 is a 32-bit big-endian IEEE 754 float argument.
type Float32 float32

// String is a NUL-terminated, 4-byte-aligned text argument.
type String string

// Blob is a length-prefixed, 4-byte-aligned binary argument.
type Blob []byte

// TimeTag is an NTP-style timestamp: whole seconds since epoch plus a
// 32-bit fraction of a second.
type TimeTag struct {
	Seconds  uint32
	Fraction uint32
}

func (Int32) TypeTag() byte   { return 'i' }
func (Float32) TypeTag() byte { return 'f' }
func (String) TypeTag() byte  { return 's' }
func (Blob) TypeTag() byte    { return 'b' }
func (TimeTag) TypeTag() byte { return 't' }

// String returns a human-readable representation of the time tag.
func (t TimeTag) String() string {
	return fmt.Sprintf("TimeTag{Seconds:%d, Fraction:%d}", t.Seconds, t.Fraction)
}
