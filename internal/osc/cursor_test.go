package osc

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// Wire encoding helpers shared by the package tests. The decoder itself is
// decode-only; these exist so tests can build bit-exact datagrams.

func appendInt32(b []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(v))
}

func appendString(b []byte, s string) []byte {
	b = append(b, s...)
	for n := len(s) + 1; ; n++ {
		b = append(b, 0)
		if n%4 == 0 {
			return b
		}
	}
}

func appendBlob(b, blob []byte) []byte {
	b = appendInt32(b, int32(len(blob)))
	b = append(b, blob...)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func appendTimeTag(b []byte, seconds, fraction uint32) []byte {
	b = binary.BigEndian.AppendUint32(b, seconds)
	return binary.BigEndian.AppendUint32(b, fraction)
}

func TestReadInt32(t *testing.T) {
	tests := []struct {
		name  string
		value int32
	}{
		{"zero", 0},
		{"positive", 12345},
		{"negative", -1},
		{"max", math.MaxInt32},
		{"min", math.MinInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(appendInt32(nil, tt.value))
			got, err := c.ReadInt32()
			if err != nil {
				t.Fatalf("ReadInt32() error: %v", err)
			}
			if got != tt.value {
				t.Errorf("ReadInt32() = %d, want %d", got, tt.value)
			}
			if c.Remaining() != 0 {
				t.Errorf("cursor advanced by %d bytes, want 4", 4-c.Remaining())
			}
		})
	}
}

func TestReadFloat32(t *testing.T) {
	values := []float32{0, 1.5, -2.25, float32(math.Pi), math.MaxFloat32}
	for _, v := range values {
		c := NewCursor(appendFloat32(nil, v))
		got, err := c.ReadFloat32()
		if err != nil {
			t.Fatalf("ReadFloat32(%g) error: %v", v, err)
		}
		if got != v {
			t.Errorf("ReadFloat32() = %g, want %g", got, v)
		}
	}
}

func TestReadString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		consumed int
	}{
		{"empty", "", 4},
		{"three chars one nul", "abc", 4},
		{"four chars padded to eight", "abcd", 8},
		{"unicode", "héllo", 8},
		{"slash address", "/mocopi/fram", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := appendString(nil, tt.value)
			if len(data) != tt.consumed {
				t.Fatalf("encoded length = %d, want %d", len(data), tt.consumed)
			}
			c := NewCursor(data)
			got, err := c.ReadString()
			if err != nil {
				t.Fatalf("ReadString() error: %v", err)
			}
			if got != tt.value {
				t.Errorf("ReadString() = %q, want %q", got, tt.value)
			}
			if c.Remaining() != 0 {
				t.Errorf("consumed %d bytes, want %d", len(data)-c.Remaining(), len(data))
			}
		})
	}
}

func TestReadStringErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"no terminator", []byte("abcd"), ErrTruncatedBuffer},
		{"padding missing", []byte{'a', 'b', 'c', 'd', 0}, ErrTruncatedBuffer},
		{"invalid utf8", []byte{0xff, 0xfe, 0x00, 0x00}, ErrInvalidEncoding},
		{"empty buffer", nil, ErrTruncatedBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.data)
			if _, err := c.ReadString(); !errors.Is(err, tt.want) {
				t.Errorf("ReadString() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadBlob(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"aligned", []byte{1, 2, 3, 4}},
		{"padded", []byte{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := appendBlob(nil, tt.blob)
			c := NewCursor(data)
			got, err := c.ReadBlob()
			if err != nil {
				t.Fatalf("ReadBlob() error: %v", err)
			}
			if len(got) != len(tt.blob) {
				t.Fatalf("ReadBlob() length = %d, want %d", len(got), len(tt.blob))
			}
			for i := range got {
				if got[i] != tt.blob[i] {
					t.Errorf("ReadBlob()[%d] = %d, want %d", i, got[i], tt.blob[i])
				}
			}
			if c.Remaining() != 0 {
				t.Errorf("blob padding not consumed, %d bytes remain", c.Remaining())
			}
		})
	}
}

func TestReadBlobErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"missing length prefix", []byte{0, 0}},
		{"length exceeds buffer", appendInt32(nil, 100)},
		{"padding missing", append(appendInt32(nil, 5), 1, 2, 3, 4, 5)},
		{"negative length", appendInt32(nil, -4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.data)
			if _, err := c.ReadBlob(); !errors.Is(err, ErrTruncatedBuffer) {
				t.Errorf("ReadBlob() error = %v, want %v", err, ErrTruncatedBuffer)
			}
		})
	}
}

func TestReadTimeTag(t *testing.T) {
	c := NewCursor(appendTimeTag(nil, 3913000000, 0x80000000))
	got, err := c.ReadTimeTag()
	if err != nil {
		t.Fatalf("ReadTimeTag() error: %v", err)
	}
	want := TimeTag{Seconds: 3913000000, Fraction: 0x80000000}
	if got != want {
		t.Errorf("ReadTimeTag() = %v, want %v", got, want)
	}

	c = NewCursor(make([]byte, 7))
	if _, err := c.ReadTimeTag(); !errors.Is(err, ErrTruncatedBuffer) {
		t.Errorf("ReadTimeTag() on 7 bytes error = %v, want %v", err, ErrTruncatedBuffer)
	}
}

// Every atom read on a buffer shorter than its declared length must fail
// with ErrTruncatedBuffer, never read out of bounds.
func TestAtomReadsNeverOverrun(t *testing.T) {
	full := appendInt32(nil, 7)
	full = appendFloat32(full, 1.25)
	full = appendString(full, "abcdef")
	full = appendBlob(full, []byte{9, 8, 7})
	full = appendTimeTag(full, 1, 2)

	for n := 0; n < len(full); n++ {
		short := full[:n]
		reads := []func(*Cursor) error{
			func(c *Cursor) error { _, err := c.ReadInt32(); return err },
			func(c *Cursor) error { _, err := c.ReadFloat32(); return err },
			func(c *Cursor) error { _, err := c.ReadString(); return err },
			func(c *Cursor) error { _, err := c.ReadBlob(); return err },
			func(c *Cursor) error { _, err := c.ReadTimeTag(); return err },
		}
		for _, read := range reads {
			c := NewCursor(short)
			for {
				if err := read(c); err != nil {
					if de := new(DecodeError); !errors.As(err, &de) {
						t.Fatalf("error %v is not a *DecodeError", err)
					}
					break
				}
				if c.Remaining() == 0 {
					break
				}
			}
		}
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	c := NewCursor(appendInt32(nil, 1))
	if _, err := c.ReadInt32(); err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	_, err := c.ReadInt32()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a *DecodeError", err)
	}
	if de.Offset != 4 {
		t.Errorf("error offset = %d, want 4", de.Offset)
	}
	if !errors.Is(err, ErrTruncatedBuffer) {
		t.Errorf("error kind = %v, want %v", de.Kind, ErrTruncatedBuffer)
	}
}
