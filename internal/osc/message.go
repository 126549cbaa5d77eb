package osc

import "fmt"

// Message is one OSC message: an address pattern plus its decoded arguments.
// Offset is the message's start position within the datagram, kept for
// diagnostics.
type Message struct {
	Address   string
	Arguments []Atom
	Offset    int
}

func (*Message) isElement() {}

// String returns a human-readable representation of the message.
func (m *Message) String() string {
	return fmt.Sprintf("Message{Address:%q, Arguments:%d}", m.Address, len(m.Arguments))
}

// ReadMessage decodes a complete message at the cursor: address string,
// type tag string, then one atom per tag character. Decoding is
// all-or-nothing; on error no partial message is returned and the error
// reports the offset of the first malformed byte.
func ReadMessage(c *Cursor) (*Message, error) {
	start := c.Offset()
	addr, err := c.ReadString()
	if err != nil {
		return nil, err
	}
	if len(addr) == 0 || addr[0] != '/' {
		return nil, Errorf(ErrInvalidAddress, start, "address %q does not start with '/'", addr)
	}

	tagsOffset := c.Offset()
	tags, err := c.ReadString()
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 || tags[0] != ',' {
		return nil, Errorf(ErrInvalidTypeTag, tagsOffset, "type tag string %q does not start with ','", tags)
	}

	args := make([]Atom, 0, len(tags)-1)
	for i := 1; i < len(tags); i++ {
		atom, err := readAtom(c, tags[i], tagsOffset+i)
		if err != nil {
			return nil, err
		}
		args = append(args, atom)
	}

	return &Message{Address: addr, Arguments: args, Offset: start}, nil
}

// readAtom decodes one atom of the kind named by the type tag character.
// tagOffset is the position of the tag character itself, reported when the
// tag is not part of the supported set.
func readAtom(c *Cursor, tag byte, tagOffset int) (Atom, error) {
	switch tag {
	case 'i':
		v, err := c.ReadInt32()
		if err != nil {
			return nil, err
		}
		return Int32(v), nil
	case 'f':
		v, err := c.ReadFloat32()
		if err != nil {
			return nil, err
		}
		return Float32(v), nil
	case 's':
		v, err := c.ReadString()
		if err != nil {
			return nil, err
		}
		return String(v), nil
	case 'b':
		v, err := c.ReadBlob()
		if err != nil {
			return nil, err
		}
		return Blob(v), nil
	case 't':
		v, err := c.ReadTimeTag()
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, Errorf(ErrUnsupportedAtomType, tagOffset, "type tag %q", string(tag))
	}
}
