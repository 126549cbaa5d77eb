package osc

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Cursor is a read position into an immutable byte buffer. A cursor is owned
// by a single decode call; it is never shared across goroutines. The base
// offset records where the buffer sits inside the enclosing datagram, so
// errors from nested bundle elements report absolute offsets.
type Cursor struct {
	buf  []byte
	pos  int
	base int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the absolute datagram offset of the next unread byte.
func (c *Cursor) Offset() int { return c.base + c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// require fails with ErrTruncatedBuffer unless n bytes remain.
func (c *Cursor) require(n int) error {
	if c.Remaining() < n {
		return Errorf(ErrTruncatedBuffer, c.Offset(), "need %d bytes, have %d", n, c.Remaining())
	}
	return nil
}

// hasPrefix reports whether the unread bytes start with p.
func (c *Cursor) hasPrefix(p []byte) bool {
	return bytes.HasPrefix(c.buf[c.pos:], p)
}

// skip advances past n bytes the caller has already validated.
func (c *Cursor) skip(n int) { c.pos += n }

// slice consumes the next n bytes and returns a sub-cursor over them whose
// offsets remain absolute. The caller must have validated n.
func (c *Cursor) slice(n int) *Cursor {
	sub := &Cursor{buf: c.buf[c.pos : c.pos+n], base: c.Offset()}
	c.pos += n
	return sub
}

// align4 rounds n up to the next multiple of 4.
func align4(n int) int { return (n + 3) &^ 3 }

// ReadInt32 reads a 4-byte big-endian signed integer.
func (c *Cursor) ReadInt32() (int32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(c.buf[c.pos:]))
	c.pos += 4
	return v, nil
}

// ReadFloat32 reads a 4-byte big-endian IEEE 754 float.
func (c *Cursor) ReadFloat32() (float32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(c.buf[c.pos:]))
	c.pos += 4
	return v, nil
}

// ReadString reads a NUL-terminated string. The total consumed length is
// always a multiple of 4 with at least one NUL, and the padding bytes must
// be present in the buffer.
func (c *Cursor) ReadString() (string, error) {
	start := c.pos
	n := bytes.IndexByte(c.buf[c.pos:], 0)
	if n < 0 {
		return "", Errorf(ErrTruncatedBuffer, c.base+len(c.buf),
			"unterminated string at offset %d", c.base+start)
	}
	if err := c.require(align4(n + 1)); err != nil {
		return "", err
	}
	s := c.buf[start : start+n]
	if !utf8.Valid(s) {
		return "", Errorf(ErrInvalidEncoding, c.base+start, "string is not valid UTF-8")
	}
	c.pos = start + align4(n+1)
	return string(s), nil
}

// ReadBlob reads a 4-byte big-endian length prefix followed by that many
// bytes, padded to a 4-byte boundary. The returned slice is a copy.
func (c *Cursor) ReadBlob() ([]byte, error) {
	start := c.Offset()
	n, err := c.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, Errorf(ErrTruncatedBuffer, start, "negative blob length %d", n)
	}
	if err := c.require(align4(int(n))); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, c.buf[c.pos:])
	c.pos += align4(int(n))
	return b, nil
}

// ReadTimeTag reads an 8-byte time tag: two big-endian 32-bit halves.
func (c *Cursor) ReadTimeTag() (TimeTag, error) {
	if err := c.require(8); err != nil {
		return TimeTag{}, err
	}
	t := TimeTag{
		Seconds:  binary.BigEndian.Uint32(c.buf[c.pos:]),
		Fraction: binary.BigEndian.Uint32(c.buf[c.pos+4:]),
	}
	c.pos += 8
	return t, nil
}
