package skeleton

import (
	"errors"
	"math"
	"testing"

	"skelanim/internal/mathutil"
)

const eps = 1e-9

func makeTransform(scale float64, rz float64, tx, ty, tz float64) Transform {
	return Transform{
		Scale:       mathutil.Vec3{scale, scale, scale},
		Rotation:    mathutil.EulerToQuat(0, 0, rz),
		Translation: mathutil.Vec3{tx, ty, tz},
	}
}

func makeBone(name string, parent int, tr Transform) Bone {
	b := NewBone(name)
	b.ParentIndex = parent
	b.Transform = tr
	return b
}

func TestIdentityTransform(t *testing.T) {
	tr := IdentityTransform()
	if tr.Scale != (mathutil.Vec3{1, 1, 1}) {
		t.Errorf("Expected unit scale, got %v", tr.Scale)
	}
	if !tr.ToWorldMatrix().IsIdentity() {
		t.Errorf("Expected identity matrix, got %v", tr.ToWorldMatrix())
	}
}

func TestTransform_ToWorldMatrix(t *testing.T) {
	tr := makeTransform(2, math.Pi/2, 10, 20, 30)
	m := tr.ToWorldMatrix()

	if got := m.Translation(); !got.ApproxEqual(mathutil.Vec3{10, 20, 30}, eps) {
		t.Errorf("Expected translation row (10,20,30), got %v", got)
	}
	// Scale first, then rotate 90° about Z, then translate.
	if got := m.MulPoint(mathutil.Vec3{1, 0, 0}); !got.ApproxEqual(mathutil.Vec3{10, 22, 30}, eps) {
		t.Errorf("Expected (10,22,30), got %v", got)
	}
}

func TestInterpolateTransform_Identical(t *testing.T) {
	a := makeTransform(1.5, 0.7, 1, -2, 3)
	for _, f := range []float64{0, 0.1, 0.5, 0.9, 1} {
		if got := InterpolateTransform(a, a, f); !got.ApproxEqual(a, eps) {
			t.Errorf("t=%v: Expected %+v, got %+v", f, a, got)
		}
	}
}

func TestInterpolateTransform_Midpoint(t *testing.T) {
	a := makeTransform(1, 0, 0, 0, 0)
	b := makeTransform(3, math.Pi/2, 4, 8, -2)

	got := InterpolateTransform(a, b, 0.5)
	want := makeTransform(2, math.Pi/4, 2, 4, -1)
	if !got.ApproxEqual(want, eps) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestInterpolateTransform_Extrapolates(t *testing.T) {
	a := makeTransform(1, 0, 0, 0, 0)
	b := makeTransform(1, 0, 1, 0, 0)

	got := InterpolateTransform(a, b, 2)
	if !got.Translation.ApproxEqual(mathutil.Vec3{2, 0, 0}, eps) {
		t.Errorf("Expected unclamped translation (2,0,0), got %v", got.Translation)
	}
}

func TestInterpolateBone_KeepsLinks(t *testing.T) {
	a := makeBone("arm", 3, makeTransform(1, 0, 0, 0, 0))
	a.ParentName = "spine"
	b := makeBone("other", 7, makeTransform(1, 0, 2, 0, 0))
	b.ParentName = "hip"

	got := InterpolateBone(a, b, 0.5)
	if got.Name != "arm" || got.ParentName != "spine" || got.ParentIndex != 3 {
		t.Errorf("Expected links from lhs, got name=%q parent=%q index=%d", got.Name, got.ParentName, got.ParentIndex)
	}
	if !got.Transform.Translation.ApproxEqual(mathutil.Vec3{1, 0, 0}, eps) {
		t.Errorf("Expected translation (1,0,0), got %v", got.Transform.Translation)
	}
}

func TestInterpolateNode(t *testing.T) {
	a := NewNode(makeBone("root", -1, makeTransform(1, 0, 0, 0, 0)))
	b := NewNode(makeBone("root", -1, makeTransform(1, math.Pi/2, 4, 0, 0)))
	a.Global = mathutil.Mat4Identity()
	b.Global = mathutil.Mat4Identity().WithTranslation(mathutil.Vec3{0, 10, 0})

	got := InterpolateNode(a, b, 0.5)

	wantLocal := got.Bone.Transform.ToWorldMatrix()
	if !got.Local.ApproxEqual(wantLocal, eps) {
		t.Errorf("Expected Local recomputed from bone, got %v", got.Local)
	}
	if tr := got.Global.Translation(); !tr.ApproxEqual(mathutil.Vec3{0, 5, 0}, eps) {
		t.Errorf("Expected linearly blended global translation (0,5,0), got %v", tr)
	}
}

func chain(depth int) []Node {
	nodes := make([]Node, depth)
	for i := range nodes {
		nodes[i] = NewNode(makeBone(string(rune('a'+i)), i-1, makeTransform(1, 0.1*float64(i), 1, 0, 0)))
	}
	return nodes
}

func TestPose_UpdateGlobalMatrices(t *testing.T) {
	nodes := chain(6)
	// Second root with one child.
	nodes = append(nodes,
		NewNode(makeBone("r2", -1, makeTransform(2, 0, 0, 5, 0))),
		NewNode(makeBone("r2c", 6, makeTransform(1, 0.3, 0, 1, 0))),
	)

	p, err := NewPose(nodes)
	if err != nil {
		t.Fatalf("NewPose failed: %v", err)
	}
	p.UpdateTransformMatrices()

	got := p.GetCurrentPose()
	for i, n := range got {
		if !n.Local.ApproxEqual(n.Bone.Transform.ToWorldMatrix(), eps) {
			t.Errorf("bone %d: Local not derived from transform", i)
		}
		if n.Bone.ParentIndex < 0 {
			if n.Global != n.Local {
				t.Errorf("bone %d: Expected root Global == Local", i)
			}
			continue
		}
		want := mathutil.Mat4Mul(n.Local, got[n.Bone.ParentIndex].Global)
		if n.Global != want {
			t.Errorf("bone %d: Expected Global == Local × parent.Global", i)
		}
	}

	// Each link translates by 1 along the parent's rotated X axis.
	tip := got[5].Global.Translation()
	if tip.Len() < 1 {
		t.Errorf("Expected tip away from origin, got %v", tip)
	}
}

func TestPose_HasCompatibleWith(t *testing.T) {
	base := chain(3)
	p := &Pose{}
	p.AssignSkeletal(base)

	renamed := chain(3)
	renamed[1].Bone.Name = "x"
	swapped := chain(3)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	tests := []struct {
		name      string
		candidate []Node
		want      bool
	}{
		{"same", chain(3), true},
		{"shorter", chain(2), false},
		{"longer", chain(4), false},
		{"renamed", renamed, false},
		{"reordered", swapped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.HasCompatibleWith(tt.candidate); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPose_AssignSkeletalCopies(t *testing.T) {
	nodes := chain(2)
	p := &Pose{}
	p.AssignSkeletal(nodes)
	nodes[0].Bone.Name = "changed"

	if p.GetCurrentPose()[0].Bone.Name == "changed" {
		t.Error("Expected pose to own a copy of the assigned nodes")
	}
	if p.Find("b") != 1 || p.Find("missing") != -1 {
		t.Errorf("Unexpected Find results: %d %d", p.Find("b"), p.Find("missing"))
	}
}

func TestValidateOrder(t *testing.T) {
	forward := chain(3)
	forward[0].Bone.ParentIndex = 2
	self := chain(3)
	self[1].Bone.ParentIndex = 1
	outside := chain(3)
	outside[2].Bone.ParentIndex = 9

	tests := []struct {
		name  string
		nodes []Node
		want  error
	}{
		{"ordered", chain(4), nil},
		{"empty", nil, nil},
		{"forward parent", forward, ErrParentOrder},
		{"self parent", self, ErrParentOrder},
		{"out of range", outside, ErrParentRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrder(tt.nodes)
			if tt.want == nil && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := NewPose(forward); !errors.Is(err, ErrParentOrder) {
		t.Errorf("Expected NewPose to reject unordered skeletal, got %v", err)
	}
}

func TestSortSkeletal(t *testing.T) {
	// hand(0) -> arm(2) -> root(1); leg(3) -> root(1)
	nodes := []Node{
		NewNode(makeBone("hand", 2, IdentityTransform())),
		NewNode(makeBone("root", -1, IdentityTransform())),
		NewNode(makeBone("arm", 1, IdentityTransform())),
		NewNode(makeBone("leg", 1, IdentityTransform())),
	}

	sorted, remap, err := SortSkeletal(nodes)
	if err != nil {
		t.Fatalf("SortSkeletal failed: %v", err)
	}
	if err := ValidateOrder(sorted); err != nil {
		t.Fatalf("Expected sorted skeletal to validate, got %v", err)
	}

	wantNames := []string{"root", "arm", "leg", "hand"}
	for i, name := range wantNames {
		if sorted[i].Bone.Name != name {
			t.Errorf("index %d: Expected %s, got %s", i, name, sorted[i].Bone.Name)
		}
	}
	if sorted[3].Bone.ParentIndex != 1 {
		t.Errorf("Expected hand parent remapped to 1, got %d", sorted[3].Bone.ParentIndex)
	}
	if remap[0] != 3 || remap[1] != 0 {
		t.Errorf("Unexpected remap %v", remap)
	}
}

func TestSortSkeletal_Cycle(t *testing.T) {
	nodes := []Node{
		NewNode(makeBone("a", 1, IdentityTransform())),
		NewNode(makeBone("b", 0, IdentityTransform())),
	}
	if _, _, err := SortSkeletal(nodes); !errors.Is(err, ErrParentCycle) {
		t.Errorf("Expected ErrParentCycle, got %v", err)
	}
}

func TestResolveParents(t *testing.T) {
	nodes := []Node{
		NewNode(NewBone("root")),
		NewNode(NewBone("spine")),
		NewNode(makeBone("head", 1, IdentityTransform())),
	}
	nodes[1].Bone.ParentName = "root"

	if err := ResolveParents(nodes); err != nil {
		t.Fatalf("ResolveParents failed: %v", err)
	}
	if nodes[1].Bone.ParentIndex != 0 {
		t.Errorf("Expected spine parent index 0, got %d", nodes[1].Bone.ParentIndex)
	}
	if nodes[2].Bone.ParentName != "spine" {
		t.Errorf("Expected head parent name spine, got %q", nodes[2].Bone.ParentName)
	}

	nodes[0].Bone.ParentName = "nobody"
	if err := ResolveParents(nodes); err == nil {
		t.Error("Expected error for unknown parent name")
	}
}
