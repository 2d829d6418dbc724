package skeleton

import "skelanim/internal/mathutil"

// Pose holds the resolved matrices of one skeletal, indexed by bone.
// The zero value is an empty pose ready for AssignSkeletal.
type Pose struct {
	skeletal []Node
}

// NewPose copies nodes into a new pose after checking that every parent
// precedes its children.
func NewPose(nodes []Node) (*Pose, error) {
	if err := ValidateOrder(nodes); err != nil {
		return nil, err
	}
	p := &Pose{}
	p.AssignSkeletal(nodes)
	return p, nil
}

// AssignSkeletal replaces the whole skeletal with a copy of nodes.
// Ordering is trusted here; validate at build time with ValidateOrder.
func (p *Pose) AssignSkeletal(nodes []Node) {
	if cap(p.skeletal) >= len(nodes) {
		p.skeletal = p.skeletal[:len(nodes)]
	} else {
		p.skeletal = make([]Node, len(nodes))
	}
	copy(p.skeletal, nodes)
}

// HasCompatibleWith reports whether candidate has the same bone names in the
// same order.
func (p *Pose) HasCompatibleWith(candidate []Node) bool {
	if len(p.skeletal) != len(candidate) {
		return false
	}
	for i := range p.skeletal {
		if p.skeletal[i].Bone.Name != candidate[i].Bone.Name {
			return false
		}
	}
	return true
}

// UpdateTransformMatrices recomputes Local for every node, then Global top-down.
func (p *Pose) UpdateTransformMatrices() {
	p.UpdateLocalMatrices()
	p.UpdateGlobalMatrices()
}

func (p *Pose) UpdateLocalMatrices() {
	for i := range p.skeletal {
		p.skeletal[i].Local = p.skeletal[i].Bone.Transform.ToWorldMatrix()
	}
}

// UpdateGlobalMatrices walks the array in order: roots take Local, children
// take Local × parent.Global. A parent stored after its child would be read
// before it is resolved.
func (p *Pose) UpdateGlobalMatrices() {
	for i := range p.skeletal {
		n := &p.skeletal[i]
		if n.Bone.ParentIndex < 0 {
			n.Global = n.Local
			continue
		}
		n.Global = mathutil.Mat4Mul(n.Local, p.skeletal[n.Bone.ParentIndex].Global)
	}
}

// GetCurrentPose returns the resolved nodes. The slice is owned by the pose
// and is overwritten by the next AssignSkeletal.
func (p *Pose) GetCurrentPose() []Node {
	return p.skeletal
}

func (p *Pose) Len() int {
	return len(p.skeletal)
}

// Find returns the index of the first bone called name, or -1.
func (p *Pose) Find(name string) int {
	for i := range p.skeletal {
		if p.skeletal[i].Bone.Name == name {
			return i
		}
	}
	return -1
}
