package osc

import (
	"errors"
	"testing"
)

// buildBundle wraps pre-encoded elements in a bundle envelope.
func buildBundle(tt TimeTag, elements ...[]byte) []byte {
	b := []byte(BundleMarker)
	b = appendTimeTag(b, tt.Seconds, tt.Fraction)
	for _, e := range elements {
		b = appendInt32(b, int32(len(e)))
		b = append(b, e...)
	}
	return b
}

// nestBundles wraps a single message in n bundle envelopes.
func nestBundles(n int, inner []byte) []byte {
	for i := 0; i < n; i++ {
		inner = buildBundle(TimeTag{}, inner)
	}
	return inner
}

func TestReadBundle(t *testing.T) {
	data := buildBundle(TimeTag{Seconds: 99, Fraction: 1},
		buildMessage("/a", Int32(1)),
		buildMessage("/b", Float32(2)),
	)

	b, err := ReadBundle(NewCursor(data), 0)
	if err != nil {
		t.Fatalf("ReadBundle() error: %v", err)
	}
	if b.TimeTag.Seconds != 99 || b.TimeTag.Fraction != 1 {
		t.Errorf("TimeTag = %v, want {99 1}", b.TimeTag)
	}
	if len(b.Elements) != 2 {
		t.Fatalf("Elements length = %d, want 2", len(b.Elements))
	}
	first, ok := b.Elements[0].(*Message)
	if !ok || first.Address != "/a" {
		t.Errorf("Elements[0] = %v, want message /a", b.Elements[0])
	}
	second, ok := b.Elements[1].(*Message)
	if !ok || second.Address != "/b" {
		t.Errorf("Elements[1] = %v, want message /b", b.Elements[1])
	}
}

func TestReadBundleNested(t *testing.T) {
	inner := buildBundle(TimeTag{}, buildMessage("/inner", Int32(7)))
	data := buildBundle(TimeTag{}, buildMessage("/outer"), inner)

	b, err := ReadBundle(NewCursor(data), 0)
	if err != nil {
		t.Fatalf("ReadBundle() error: %v", err)
	}
	if len(b.Elements) != 2 {
		t.Fatalf("Elements length = %d, want 2", len(b.Elements))
	}
	nested, ok := b.Elements[1].(*Bundle)
	if !ok {
		t.Fatalf("Elements[1] = %T, want *Bundle", b.Elements[1])
	}
	if len(nested.Elements) != 1 {
		t.Fatalf("nested Elements length = %d, want 1", len(nested.Elements))
	}
}

func TestFlattenOrder(t *testing.T) {
	inner := buildBundle(TimeTag{},
		buildMessage("/b"),
		buildMessage("/c"),
	)
	data := buildBundle(TimeTag{},
		buildMessage("/a"),
		inner,
		buildMessage("/d"),
	)

	b, err := ReadBundle(NewCursor(data), 0)
	if err != nil {
		t.Fatalf("ReadBundle() error: %v", err)
	}
	msgs := b.Flatten()
	want := []string{"/a", "/b", "/c", "/d"}
	if len(msgs) != len(want) {
		t.Fatalf("Flatten() length = %d, want %d", len(msgs), len(want))
	}
	for i, addr := range want {
		if msgs[i].Address != addr {
			t.Errorf("Flatten()[%d].Address = %q, want %q", i, msgs[i].Address, addr)
		}
	}
}

func TestReadBundleErrors(t *testing.T) {
	oversized := buildBundle(TimeTag{})
	oversized = appendInt32(oversized, 100)
	oversized = append(oversized, buildMessage("/a")...)

	// A message element followed by 4 undeclared bytes inside its size
	// prefix.
	padded := buildMessage("/a")
	padded = append(padded, 0xde, 0xad, 0xbe, 0xef)
	trailing := buildBundle(TimeTag{}, padded)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"wrong marker", append([]byte("#bundel\x00"), make([]byte, 8)...), ErrNotABundle},
		{"marker truncated", []byte("#bun"), ErrTruncatedBuffer},
		{"missing time tag", []byte(BundleMarker), ErrTruncatedBuffer},
		{"element size exceeds buffer", oversized, ErrTruncatedBuffer},
		{"element with trailing bytes", trailing, ErrElementSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadBundle(NewCursor(tt.data), 0); !errors.Is(err, tt.want) {
				t.Errorf("ReadBundle() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadBundleDepthLimit(t *testing.T) {
	msg := buildMessage("/leaf")

	if _, err := ReadBundle(NewCursor(nestBundles(4, msg)), 4); err != nil {
		t.Fatalf("bundle at the depth limit failed: %v", err)
	}
	if _, err := ReadBundle(NewCursor(nestBundles(5, msg)), 4); !errors.Is(err, ErrBundleTooDeep) {
		t.Errorf("bundle beyond the depth limit error = %v, want %v", err, ErrBundleTooDeep)
	}

	// Zero maxDepth falls back to the generous default.
	if _, err := ReadBundle(NewCursor(nestBundles(DefaultMaxDepth, msg)), 0); err != nil {
		t.Fatalf("bundle at default depth limit failed: %v", err)
	}
	deep := nestBundles(DefaultMaxDepth+1, msg)
	if _, err := ReadBundle(NewCursor(deep), 0); !errors.Is(err, ErrBundleTooDeep) {
		t.Errorf("bundle beyond default depth error = %v, want %v", err, ErrBundleTooDeep)
	}
}

func TestReadPacket(t *testing.T) {
	msg := buildMessage("/a", Int32(1))
	if elem, err := ReadPacket(msg, 0); err != nil {
		t.Fatalf("ReadPacket(message) error: %v", err)
	} else if _, ok := elem.(*Message); !ok {
		t.Errorf("ReadPacket(message) = %T, want *Message", elem)
	}

	bundle := buildBundle(TimeTag{}, msg)
	if elem, err := ReadPacket(bundle, 0); err != nil {
		t.Fatalf("ReadPacket(bundle) error: %v", err)
	} else if _, ok := elem.(*Bundle); !ok {
		t.Errorf("ReadPacket(bundle) = %T, want *Bundle", elem)
	}

	if _, err := ReadPacket(append(msg, 0, 0, 0, 0), 0); !errors.Is(err, ErrElementSize) {
		t.Errorf("ReadPacket with trailing bytes error = %v, want %v", err, ErrElementSize)
	}
}

// Errors inside nested bundle elements must report offsets absolute to the
// datagram, not relative to the element sub-buffer.
func TestNestedErrorOffsetsAreAbsolute(t *testing.T) {
	bad := appendString(nil, "nope") // invalid address inside the element
	bad = appendString(bad, ",")
	data := buildBundle(TimeTag{}, buildMessage("/ok"), bad)

	_, err := ReadBundle(NewCursor(data), 0)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a *DecodeError", err)
	}
	// Marker and time tag take 16 bytes, the first element is size-prefixed
	// and well-formed, so the bad address must sit past byte 16.
	if de.Offset <= 16 {
		t.Errorf("error offset = %d, want an absolute offset past the first element", de.Offset)
	}
}
