package mocap

import (
	"fmt"

	"github.com/FOURIER-Inc/mocopi-parser/internal/osc"
)

// Packet is the decoded form of one OSC message. The concrete types are
// *SkeletonPacket, *FramePacket and *UnknownPacket.
type Packet interface {
	isPacket()
}

// SkeletonPacket carries a skeleton definition.
type SkeletonPacket struct {
	Skeleton Skeleton
}

// FramePacket carries one frame of bone transforms.
type FramePacket struct {
	Frame Frame
}

// UnknownPacket carries a well-formed message whose address is not in the
// configured vocabulary. Address and raw atoms are preserved so callers can
// handle message types this package does not model yet.
type UnknownPacket struct {
	Address   string
	Arguments []osc.Atom
}

func (*SkeletonPacket) isPacket() {}
func (*FramePacket) isPacket()    {}
func (*UnknownPacket) isPacket()  {}

func (p *SkeletonPacket) String() string {
	return fmt.Sprintf("SkeletonPacket{%v}", &p.Skeleton)
}

func (p *FramePacket) String() string {
	return fmt.Sprintf("FramePacket{%v}", &p.Frame)
}

func (p *UnknownPacket) String() string {
	return fmt.Sprintf("UnknownPacket{Address:%q, Arguments:%d}", p.Address, len(p.Arguments))
}
