package mocap

import "github.com/FOURIER-Inc/mocopi-parser/internal/osc"

// decodeSkeleton interprets the message arguments as a flat sequence of
// (bone id, name, parent id) triplets and validates the declared hierarchy:
// unique ids, no dangling parent references, no parent cycles.
func decodeSkeleton(msg *osc.Message) (*SkeletonPacket, error) {
	args := msg.Arguments
	if len(args)%skeletonBoneFields != 0 {
		return nil, osc.Errorf(ErrMalformedSkeleton, msg.Offset,
			"argument count %d is not a multiple of %d", len(args), skeletonBoneFields)
	}

	bones := make([]Bone, 0, len(args)/skeletonBoneFields)
	ids := make(map[BoneID]struct{}, len(args)/skeletonBoneFields)
	for i := 0; i < len(args); i += skeletonBoneFields {
		n := i / skeletonBoneFields

		id, ok := args[i].(osc.Int32)
		if !ok {
			return nil, osc.Errorf(ErrMalformedSkeleton, msg.Offset,
				"bone %d: id is %T, want int32", n, args[i])
		}
		name, ok := args[i+1].(osc.String)
		if !ok {
			return nil, osc.Errorf(ErrMalformedSkeleton, msg.Offset,
				"bone %d: name is %T, want string", n, args[i+1])
		}
		parent, ok := args[i+2].(osc.Int32)
		if !ok {
			return nil, osc.Errorf(ErrMalformedSkeleton, msg.Offset,
				"bone %d: parent id is %T, want int32", n, args[i+2])
		}

		bone := Bone{ID: BoneID(id), Name: string(name), Parent: BoneID(parent)}
		if _, dup := ids[bone.ID]; dup {
			return nil, osc.Errorf(ErrMalformedSkeleton, msg.Offset, "duplicate bone id %d", bone.ID)
		}
		ids[bone.ID] = struct{}{}
		bones = append(bones, bone)
	}

	for _, b := range bones {
		if b.IsRoot() {
			continue
		}
		if _, ok := ids[b.Parent]; !ok {
			return nil, osc.Errorf(ErrMalformedSkeleton, msg.Offset,
				"bone %d references undefined parent %d", b.ID, b.Parent)
		}
	}
	if err := checkParentCycles(bones, msg.Offset); err != nil {
		return nil, err
	}

	return &SkeletonPacket{Skeleton: Skeleton{Bones: bones}}, nil
}

// checkParentCycles walks every bone's parent chain. With dangling
// references already ruled out, a chain longer than the bone count can only
// mean a cycle.
func checkParentCycles(bones []Bone, offset int) error {
	parents := make(map[BoneID]BoneID, len(bones))
	for _, b := range bones {
		parents[b.ID] = b.Parent
	}

	for _, b := range bones {
		id := b.ID
		for steps := 0; id != RootParent; steps++ {
			if steps > len(bones) {
				return osc.Errorf(ErrMalformedSkeleton, offset, "parent cycle through bone %d", b.ID)
			}
			id = parents[id]
		}
	}
	return nil
}
