package mocap

import (
	"errors"

	"github.com/FOURIER-Inc/mocopi-parser/internal/osc"
)

// Payload error kinds, in addition to the envelope kinds from the osc
// package. Both wrap into osc.DecodeError so every failure carries the byte
// offset of the offending message.
var (
	ErrMalformedSkeleton = errors.New("malformed skeleton definition")
	ErrMalformedFrame    = errors.New("malformed frame")
)

// MessageKind selects the decoding strategy for an address.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindSkeleton
	KindFrame
)

// Device addresses. The vocabulary is a table rather than hardcoded
// dispatch so new firmware addresses can be added without touching the
// decode path.
const (
	SkeletonAddress = "/mocopi/skdf"
	FrameAddress    = "/mocopi/fram"
)

// Per-bone argument arity.
const (
	skeletonBoneFields = 3 // bone id, name, parent id
	frameBoneFields    = 8 // bone id, position x/y/z, rotation x/y/z/w
)

// AddressTable maps message addresses to decoding strategies. Addresses not
// present decode as UnknownPacket.
type AddressTable map[string]MessageKind

// DefaultAddresses returns the stock device vocabulary.
func DefaultAddresses() AddressTable {
	return AddressTable{
		SkeletonAddress: KindSkeleton,
		FrameAddress:    KindFrame,
	}
}

var defaultAddresses = DefaultAddresses()

// Decoder turns raw datagrams into packets. The zero value uses the default
// address table and bundle depth limit. A Decoder holds no per-call state
// and is safe for concurrent use on independent buffers.
type Decoder struct {
	Addresses      AddressTable
	MaxBundleDepth int
}

// Parse decodes one datagram using the default device vocabulary.
func Parse(buf []byte) ([]Packet, error) {
	var d Decoder
	return d.Parse(buf)
}

// Parse decodes a single datagram into its packets, one per message, in
// bundle traversal order (depth-first, left to right). The first malformed
// byte aborts the whole call; there is no partial result.
func (d *Decoder) Parse(buf []byte) ([]Packet, error) {
	elem, err := osc.ReadPacket(buf, d.MaxBundleDepth)
	if err != nil {
		return nil, err
	}

	var msgs []*osc.Message
	switch v := elem.(type) {
	case *osc.Message:
		msgs = []*osc.Message{v}
	case *osc.Bundle:
		msgs = v.Flatten()
	}

	addresses := d.Addresses
	if addresses == nil {
		addresses = defaultAddresses
	}

	packets := make([]Packet, 0, len(msgs))
	for _, msg := range msgs {
		var (
			pkt Packet
			err error
		)
		switch addresses[msg.Address] {
		case KindSkeleton:
			pkt, err = decodeSkeleton(msg)
		case KindFrame:
			pkt, err = decodeFrame(msg)
		default:
			pkt = &UnknownPacket{Address: msg.Address, Arguments: msg.Arguments}
		}
		if err != nil {
			return nil, err
		}
		packets = append(packets, pkt)
	}

	return packets, nil
}
