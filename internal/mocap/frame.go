package mocap

import "github.com/FOURIER-Inc/mocopi-parser/internal/osc"

// decodeFrame interprets the message arguments as a timestamp followed by
// repeated (bone id, position x/y/z, rotation x/y/z/w) tuples.
func decodeFrame(msg *osc.Message) (*FramePacket, error) {
	args := msg.Arguments
	if len(args) < 1 {
		return nil, osc.Errorf(ErrMalformedFrame, msg.Offset, "missing timestamp argument")
	}

	var ts float64
	switch v := args[0].(type) {
	case osc.Int32:
		ts = float64(v)
	case osc.Float32:
		ts = float64(v)
	default:
		return nil, osc.Errorf(ErrMalformedFrame, msg.Offset,
			"timestamp is %T, want int32 or float32", args[0])
	}

	rest := args[1:]
	if len(rest)%frameBoneFields != 0 {
		return nil, osc.Errorf(ErrMalformedFrame, msg.Offset,
			"argument count %d after timestamp is not a multiple of %d", len(rest), frameBoneFields)
	}

	bones := make([]BoneTransform, 0, len(rest)/frameBoneFields)
	for i := 0; i < len(rest); i += frameBoneFields {
		n := i / frameBoneFields

		id, ok := rest[i].(osc.Int32)
		if !ok {
			return nil, osc.Errorf(ErrMalformedFrame, msg.Offset,
				"bone %d: id is %T, want int32", n, rest[i])
		}

		var f [7]float32
		for j := range f {
			v, ok := rest[i+1+j].(osc.Float32)
			if !ok {
				return nil, osc.Errorf(ErrMalformedFrame, msg.Offset,
					"bone %d: transform field %d is %T, want float32", n, j, rest[i+1+j])
			}
			f[j] = float32(v)
		}

		bones = append(bones, BoneTransform{
			ID: BoneID(id),
			Transform: Transform{
				Position: Vec3{X: f[0], Y: f[1], Z: f[2]},
				Rotation: Quat{X: f[3], Y: f[4], Z: f[5], W: f[6]},
			},
		})
	}

	return &FramePacket{Frame: Frame{Timestamp: ts, Bones: bones}}, nil
}
