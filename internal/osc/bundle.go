package osc

import (
	"bytes"
	"fmt"
)

// BundleMarker is the 8-byte literal that opens every bundle.
const BundleMarker = "#bundle\x00"

// DefaultMaxDepth bounds bundle recursion when no explicit limit is given.
// The format itself has no depth limit; the bound protects against
// adversarial input exhausting the call stack.
const DefaultMaxDepth = 32

// Element is one entry of a bundle: either a *Message or a nested *Bundle.
type Element interface {
	isElement()
}

// Bundle is a timestamped container of messages and nested bundles.
type Bundle struct {
	TimeTag  TimeTag
	Elements []Element
	Offset   int
}

func (*Bundle) isElement() {}

// String returns a human-readable representation of the bundle.
func (b *Bundle) String() string {
	return fmt.Sprintf("Bundle{TimeTag:%v, Elements:%d}", b.TimeTag, len(b.Elements))
}

// Flatten returns the bundle's message leaves depth-first, left to right.
func (b *Bundle) Flatten() []*Message {
	msgs := make([]*Message, 0, len(b.Elements))
	for _, e := range b.Elements {
		switch v := e.(type) {
		case *Message:
			msgs = append(msgs, v)
		case *Bundle:
			msgs = append(msgs, v.Flatten()...)
		}
	}
	return msgs
}

// ReadBundle decodes a bundle at the cursor. maxDepth bounds recursion into
// nested bundles; values below 1 fall back to DefaultMaxDepth.
func ReadBundle(c *Cursor, maxDepth int) (*Bundle, error) {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return readBundle(c, 1, maxDepth)
}

func readBundle(c *Cursor, depth, maxDepth int) (*Bundle, error) {
	start := c.Offset()
	if depth > maxDepth {
		return nil, Errorf(ErrBundleTooDeep, start, "nesting depth %d exceeds limit %d", depth, maxDepth)
	}

	if err := c.require(len(BundleMarker)); err != nil {
		return nil, err
	}
	if !c.hasPrefix([]byte(BundleMarker)) {
		return nil, Errorf(ErrNotABundle, start, "missing %q marker", "#bundle")
	}
	c.skip(len(BundleMarker))

	tt, err := c.ReadTimeTag()
	if err != nil {
		return nil, err
	}

	b := &Bundle{TimeTag: tt, Offset: start}
	for c.Remaining() > 0 {
		sizeOffset := c.Offset()
		size, err := c.ReadInt32()
		if err != nil {
			return nil, err
		}
		if size < 0 || int(size) > c.Remaining() {
			return nil, Errorf(ErrTruncatedBuffer, sizeOffset,
				"element size %d exceeds remaining %d bytes", size, c.Remaining())
		}

		sub := c.slice(int(size))
		var elem Element
		if sub.hasPrefix([]byte(BundleMarker)) {
			elem, err = readBundle(sub, depth+1, maxDepth)
		} else {
			elem, err = ReadMessage(sub)
		}
		if err != nil {
			return nil, err
		}
		if sub.Remaining() != 0 {
			return nil, Errorf(ErrElementSize, sub.Offset(),
				"element declared %d bytes, %d left undecoded", size, sub.Remaining())
		}
		b.Elements = append(b.Elements, elem)
	}

	return b, nil
}

// ReadPacket decodes one whole datagram as either a single message or a
// bundle, chosen by whether it opens with the bundle marker. The datagram
// must be fully consumed by the decode.
func ReadPacket(data []byte, maxDepth int) (Element, error) {
	c := NewCursor(data)

	var (
		elem Element
		err  error
	)
	if bytes.HasPrefix(data, []byte(BundleMarker)) {
		elem, err = ReadBundle(c, maxDepth)
	} else {
		elem, err = ReadMessage(c)
	}
	if err != nil {
		return nil, err
	}
	if c.Remaining() != 0 {
		return nil, Errorf(ErrElementSize, c.Offset(), "%d trailing bytes after packet", c.Remaining())
	}
	return elem, nil
}
