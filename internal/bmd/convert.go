package bmd

import (
	"fmt"

	"skelanim/internal/mathutil"
	"skelanim/internal/model"
	"skelanim/internal/motion"
	"skelanim/internal/skeleton"
)

// ActionName is the motion name given to action i.
func ActionName(i int) string {
	return fmt.Sprintf("action_%02d", i)
}

func keyTransform(k BoneKey) skeleton.Transform {
	tr := skeleton.IdentityTransform()
	tr.Translation = mathutil.Vec3{float64(k.Position[0]), float64(k.Position[1]), float64(k.Position[2])}
	tr.Rotation = mathutil.EulerToQuat(float64(k.Rotation[0]), float64(k.Rotation[1]), float64(k.Rotation[2]))
	return tr
}

// ToSource converts a decoded file into the animation core's Source.
// The bind pose comes from the first key of the first action and every
// action becomes one motion with keys spaced samplingRate seconds apart.
// Bones are reordered parents-first; mesh bone indices follow.
func ToSource(f *File, samplingRate float64) (*model.Source, error) {
	if samplingRate <= 0 {
		samplingRate = motion.DefaultSamplingRate
	}

	n := len(f.Bones)
	bind := make([]skeleton.Node, n)
	for i := range f.Bones {
		b := &f.Bones[i]
		bone := skeleton.NewBone(b.Name)
		if b.IsDummy || bone.Name == "" {
			bone.Name = fmt.Sprintf("bone_%03d", i)
		}
		if b.Parent >= 0 && b.Parent < n && b.Parent != i {
			bone.ParentIndex = b.Parent
		}
		if k, ok := b.BindKey(); ok {
			bone.Transform = keyTransform(k)
		}
		bone.TransformToParent = bone.Transform
		bind[i] = skeleton.NewNode(bone)
	}

	if err := skeleton.ResolveParents(bind); err != nil {
		return nil, fmt.Errorf("bmd: %s: %w", f.Name, err)
	}
	sorted, remap, err := skeleton.SortSkeletal(bind)
	if err != nil {
		return nil, fmt.Errorf("bmd: %s: %w", f.Name, err)
	}

	var pose skeleton.Pose
	pose.AssignSkeletal(sorted)
	pose.UpdateTransformMatrices()
	sorted = append([]skeleton.Node(nil), pose.GetCurrentPose()...)

	src := &model.Source{
		Name:     f.Name,
		Skeletal: sorted,
		Meshes:   make([]model.Mesh, 0, len(f.Meshes)),
		Motions:  make([]motion.Motion, 0, len(f.Actions)),
	}

	// Vertices are stored in bone space already.
	src.BoneOffsets = make([]mathutil.Mat4, n)
	for i := range src.BoneOffsets {
		src.BoneOffsets[i] = mathutil.Mat4Identity()
	}

	for a, act := range f.Actions {
		m := motion.NewMotion(ActionName(a))
		m.SamplingRate = samplingRate
		for k := 0; k < act.KeyCount; k++ {
			frame := make([]skeleton.Node, n)
			copy(frame, sorted)
			for old := range f.Bones {
				keys := f.Bones[old].Keys
				if a >= len(keys) || k >= len(keys[a]) {
					continue
				}
				frame[remap[old]].Bone.Transform = keyTransform(keys[a][k])
			}
			pose.AssignSkeletal(frame)
			pose.UpdateTransformMatrices()
			m.AddKeyFrame(motion.KeyFrame{
				Seconds: float64(k) * samplingRate,
				KeyPose: append([]skeleton.Node(nil), pose.GetCurrentPose()...),
			})
		}
		src.Motions = append(src.Motions, m)
	}

	for i := range f.Meshes {
		src.Meshes = append(src.Meshes, convertMesh(&f.Meshes[i], remap, i))
	}
	return src, nil
}

// convertMesh expands indexed triangles into a triangle list with one
// position, normal and bone per corner.
func convertMesh(m *Mesh, remap []int, index int) model.Mesh {
	out := model.Mesh{Name: m.TexPath}
	if out.Name == "" {
		out.Name = fmt.Sprintf("mesh_%02d", index)
	}

	for _, tri := range m.Tris {
		for _, c := range tri.Corners() {
			if !validCorners(m, tri, c) {
				continue
			}
			for _, k := range c {
				vi, ni := tri.VI[k], tri.NI[k]
				v := m.Verts[vi]
				out.Positions = append(out.Positions, mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})

				var nrm mathutil.Vec3
				if ni >= 0 && int(ni) < len(m.Normals) {
					nv := m.Normals[ni]
					nrm = mathutil.Vec3{float64(nv[0]), float64(nv[1]), float64(nv[2])}
				}
				out.Normals = append(out.Normals, nrm)

				bone := -1
				if b := int(m.Nodes[vi]); b >= 0 && b < len(remap) {
					bone = remap[b]
				}
				out.BoneIndices = append(out.BoneIndices, bone)
				out.Indices = append(out.Indices, uint32(len(out.Positions)-1))
			}
		}
	}
	return out
}

func validCorners(m *Mesh, tri Triangle, c [3]int) bool {
	for _, k := range c {
		if vi := tri.VI[k]; vi < 0 || int(vi) >= len(m.Verts) {
			return false
		}
	}
	return true
}
