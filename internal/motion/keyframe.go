package motion

import "skelanim/internal/skeleton"

// KeyFrame is the full skeletal at one clip-relative timestamp.
type KeyFrame struct {
	// Seconds is the start time of this frame within the clip.
	Seconds float64
	// KeyPose holds one node per bone, indexed by bone.
	KeyPose []skeleton.Node
}

func (k KeyFrame) IsEmpty() bool {
	return len(k.KeyPose) == 0
}

// Clone returns a copy that shares no node storage with k.
func (k KeyFrame) Clone() KeyFrame {
	out := KeyFrame{Seconds: k.Seconds}
	if k.KeyPose != nil {
		out.KeyPose = make([]skeleton.Node, len(k.KeyPose))
		copy(out.KeyPose, k.KeyPose)
	}
	return out
}

// AssignTo replaces the skeletal of p with this keyframe's nodes.
func (k KeyFrame) AssignTo(p *skeleton.Pose) {
	p.AssignSkeletal(k.KeyPose)
}

// InterpolateKeyFrame blends every bone of lhs and rhs independently.
// Both keyframes must carry the same number of bones; anything else panics
// with a *PreconditionError.
func InterpolateKeyFrame(lhs, rhs KeyFrame, t float64) KeyFrame {
	if len(lhs.KeyPose) != len(rhs.KeyPose) {
		precondition("InterpolateKeyFrame", "bone count mismatch: %d != %d", len(lhs.KeyPose), len(rhs.KeyPose))
	}

	out := KeyFrame{
		Seconds: lhs.Seconds + (rhs.Seconds-lhs.Seconds)*t,
		KeyPose: make([]skeleton.Node, len(lhs.KeyPose)),
	}
	for i := range lhs.KeyPose {
		out.KeyPose[i] = skeleton.InterpolateNode(lhs.KeyPose[i], rhs.KeyPose[i], t)
	}
	return out
}
