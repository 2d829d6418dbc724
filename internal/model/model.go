package model

import (
	"fmt"

	"skelanim/internal/mathutil"
)

// Kind is the closed set of model variants.
type Kind int

const (
	KindStatic Kind = iota
	KindSkinning
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindSkinning:
		return "skinning"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// VertexBufferSetter receives interleaved vertex data, e.g. a GPU upload.
type VertexBufferSetter interface {
	SetVertexBuffers(stride int, vertices []float32, indices []uint32) error
}

// Model is a loaded Source plus the data its variant needs for drawing.
type Model struct {
	Kind        Kind
	Source      *Source
	Elements    Element
	BoneOffsets []mathutil.Mat4
}

// NewModel validates src and derives bone offsets for skinning models.
func NewModel(src *Source) (*Model, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	m := &Model{Kind: src.Kind(), Source: src}
	if m.Kind != KindSkinning {
		return m, nil
	}

	m.Elements = m.Elements.Add(ElementSkinned)
	if src.BoneOffsets != nil {
		m.BoneOffsets = append([]mathutil.Mat4(nil), src.BoneOffsets...)
		return m, nil
	}

	bind, err := src.BindPose()
	if err != nil {
		return nil, err
	}
	nodes := bind.GetCurrentPose()
	m.BoneOffsets = make([]mathutil.Mat4, len(nodes))
	for i := range nodes {
		m.BoneOffsets[i] = nodes[i].Global.Inverse()
	}
	return m, nil
}

// VertexStride is the number of float32 values per vertex:
// position + normal, plus bone index and weight for skinning models.
func (m *Model) VertexStride() int {
	if m.Kind == KindSkinning {
		return 8
	}
	return 6
}

// CreateVertices interleaves every mesh into one buffer laid out per
// VertexStride.
func (m *Model) CreateVertices() []float32 {
	stride := m.VertexStride()
	total := 0
	for i := range m.Source.Meshes {
		total += len(m.Source.Meshes[i].Positions)
	}

	out := make([]float32, 0, total*stride)
	for mi := range m.Source.Meshes {
		mesh := &m.Source.Meshes[mi]
		for v, p := range mesh.Positions {
			var n mathutil.Vec3
			if v < len(mesh.Normals) {
				n = mesh.Normals[v]
			}
			out = append(out,
				float32(p[0]), float32(p[1]), float32(p[2]),
				float32(n[0]), float32(n[1]), float32(n[2]))

			if m.Kind == KindSkinning {
				bone, weight := 0, 0.0
				if v < len(mesh.BoneIndices) {
					bone, weight = mesh.BoneIndices[v], 1
				}
				out = append(out, float32(bone), float32(weight))
			}
		}
	}
	return out
}

// Indices concatenates mesh index lists, rebased onto CreateVertices output.
func (m *Model) Indices() []uint32 {
	var out []uint32
	base := uint32(0)
	for mi := range m.Source.Meshes {
		mesh := &m.Source.Meshes[mi]
		for _, idx := range mesh.Indices {
			out = append(out, base+idx)
		}
		base += uint32(len(mesh.Positions))
	}
	return out
}

// SetVertexBuffers builds the vertex and index data and hands it to dst.
func (m *Model) SetVertexBuffers(dst VertexBufferSetter) error {
	if err := dst.SetVertexBuffers(m.VertexStride(), m.CreateVertices(), m.Indices()); err != nil {
		return fmt.Errorf("model: %s: set vertex buffers: %w", m.Source.Name, err)
	}
	return nil
}
