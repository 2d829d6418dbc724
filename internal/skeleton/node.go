package skeleton

import "skelanim/internal/mathutil"

// Bone is one joint of a skeletal at a point in time.
type Bone struct {
	Name       string
	ParentName string // empty for roots
	// ParentIndex is the parent's position in the containing skeletal, or -1.
	ParentIndex int

	Transform         Transform // local-to-parent
	TransformToParent Transform // local-to-mesh (bind)
}

// NewBone returns a root bone with identity transforms.
func NewBone(name string) Bone {
	return Bone{
		Name:              name,
		ParentIndex:       -1,
		Transform:         IdentityTransform(),
		TransformToParent: IdentityTransform(),
	}
}

func (b Bone) IsRoot() bool {
	return b.ParentIndex < 0
}

// InterpolateBone interpolates only the transforms; name and parent links
// are copied from lhs.
func InterpolateBone(lhs, rhs Bone, t float64) Bone {
	out := lhs
	out.Transform = InterpolateTransform(lhs.Transform, rhs.Transform, t)
	out.TransformToParent = InterpolateTransform(lhs.TransformToParent, rhs.TransformToParent, t)
	return out
}

// Node wraps a Bone with its resolved matrices. Global can only be computed
// against the whole skeletal the node belongs to (see Pose).
type Node struct {
	Bone   Bone
	Local  mathutil.Mat4
	Global mathutil.Mat4
}

// NewNode builds a node with Local derived from the bone and Global unset (identity).
func NewNode(b Bone) Node {
	return Node{
		Bone:   b,
		Local:  b.Transform.ToWorldMatrix(),
		Global: mathutil.Mat4Identity(),
	}
}

// InterpolateNode recomputes Local from the interpolated bone and blends
// Global linearly. The linear global blend is an approximation for
// rotations; adjacent keyframes are close enough for it to hold.
func InterpolateNode(lhs, rhs Node, t float64) Node {
	bone := InterpolateBone(lhs.Bone, rhs.Bone, t)
	return Node{
		Bone:   bone,
		Local:  bone.Transform.ToWorldMatrix(),
		Global: mathutil.Mat4Lerp(lhs.Global, rhs.Global, t),
	}
}
