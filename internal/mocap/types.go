package mocap

import "fmt"

// BoneID identifies a bone within a skeleton.
type BoneID int32

// RootParent is the parent id a bone declares when it has no parent.
const RootParent BoneID = -1

// Bone is one entry of a skeleton definition.
type Bone struct {
	ID     BoneID
	Name   string
	Parent BoneID
}

// IsRoot reports whether the bone declares no parent.
func (b Bone) IsRoot() bool { return b.Parent == RootParent }

// Skeleton is the bone hierarchy a stream of frames is interpreted against.
// It is sent once (or occasionally) by the device and immutable once decoded.
type Skeleton struct {
	Bones []Bone
}

// Bone returns the definition for the given bone id.
func (s *Skeleton) Bone(id BoneID) (Bone, bool) {
	for _, b := range s.Bones {
		if b.ID == id {
			return b, true
		}
	}
	return Bone{}, false
}

// Vec3 is a 3-component single-precision vector.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a quaternion rotation. Values pass through exactly as sent; the
// decoder never normalizes, non-unit quaternions are the consumer's call.
type Quat struct {
	X, Y, Z, W float32
}

// Transform is a bone's pose at one frame.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// BoneTransform pairs a bone id with its transform, kept in encoded order.
type BoneTransform struct {
	ID        BoneID
	Transform Transform
}

// Frame is one timestamped sample of bone transforms. Bone ids are not
// checked against any skeleton here; skeleton and frame datagrams arrive
// independently with no ordering guarantee, so correlation belongs to the
// consumer.
type Frame struct {
	Timestamp float64
	Bones     []BoneTransform
}

// Transform returns the transform for the given bone id.
func (f *Frame) Transform(id BoneID) (Transform, bool) {
	for _, bt := range f.Bones {
		if bt.ID == id {
			return bt.Transform, true
		}
	}
	return Transform{}, false
}

// String returns a human-readable representation of the skeleton.
func (s *Skeleton) String() string {
	return fmt.Sprintf("Skeleton{Bones:%d}", len(s.Bones))
}

// String returns a human-readable representation of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{Timestamp:%g, Bones:%d}", f.Timestamp, len(f.Bones))
}
