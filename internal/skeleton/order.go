package skeleton

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrParentOrder is returned when a bone's parent is stored after it.
	ErrParentOrder = errors.New("skeleton: parent stored after child")
	// ErrParentRange is returned for parent indices outside the skeletal.
	ErrParentRange = errors.New("skeleton: parent index out of range")
	// ErrParentCycle is returned when following parents never reaches a root.
	ErrParentCycle = errors.New("skeleton: parent cycle")
)

// ValidateOrder checks that every parent index is -1 or strictly lower than
// the bone's own index.
func ValidateOrder(nodes []Node) error {
	for i, n := range nodes {
		pi := n.Bone.ParentIndex
		switch {
		case pi < 0:
		case pi >= len(nodes):
			return fmt.Errorf("%w: bone %d (%s) parent %d", ErrParentRange, i, n.Bone.Name, pi)
		case pi >= i:
			return fmt.Errorf("%w: bone %d (%s) parent %d", ErrParentOrder, i, n.Bone.Name, pi)
		}
	}
	return nil
}

// ResolveParents fills ParentIndex from ParentName where the index is unset
// and ParentName from ParentIndex where the name is empty. Names resolve to
// the first bone carrying them.
func ResolveParents(nodes []Node) error {
	index := make(map[string]int, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		index[nodes[i].Bone.Name] = i
	}
	for i := range nodes {
		b := &nodes[i].Bone
		switch {
		case b.ParentIndex >= len(nodes):
			return fmt.Errorf("%w: bone %d (%s) parent %d", ErrParentRange, i, b.Name, b.ParentIndex)
		case b.ParentIndex >= 0:
			b.ParentName = nodes[b.ParentIndex].Bone.Name
		case b.ParentName != "":
			pi, ok := index[b.ParentName]
			if !ok {
				return fmt.Errorf("skeleton: bone %d (%s): unknown parent %q", i, b.Name, b.ParentName)
			}
			b.ParentIndex = pi
		default:
			b.ParentIndex = -1
		}
	}
	return nil
}

// SortSkeletal returns a copy of nodes reordered so that every parent comes
// before its descendants, with parent indices remapped. The relative order of
// bones at the same depth is kept. Also returns old→new index mapping.
func SortSkeletal(nodes []Node) ([]Node, []int, error) {
	n := len(nodes)
	depth := make([]int, n)
	for i := range depth {
		depth[i] = -1
	}

	var stk []int
	for i := 0; i < n; i++ {
		// Walk up until a bone with known depth or a root, then unwind.
		cur := i
		for depth[cur] < 0 {
			stk = append(stk, cur)
			if len(stk) > n {
				return nil, nil, fmt.Errorf("%w: through bone %d (%s)", ErrParentCycle, i, nodes[i].Bone.Name)
			}
			pi := nodes[cur].Bone.ParentIndex
			if pi < 0 {
				break
			}
			if pi >= n {
				return nil, nil, fmt.Errorf("%w: bone %d (%s) parent %d", ErrParentRange, cur, nodes[cur].Bone.Name, pi)
			}
			cur = pi
		}
		base := 0
		if depth[cur] >= 0 {
			base = depth[cur] + 1
		}
		for j := len(stk) - 1; j >= 0; j-- {
			depth[stk[j]] = base
			base++
		}
		stk = stk[:0]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return depth[order[a]] < depth[order[b]] })

	remap := make([]int, n)
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
	}

	out := make([]Node, n)
	for newIdx, oldIdx := range order {
		out[newIdx] = nodes[oldIdx]
		if pi := nodes[oldIdx].Bone.ParentIndex; pi >= 0 {
			out[newIdx].Bone.ParentIndex = remap[pi]
		}
	}
	return out, remap, nil
}
