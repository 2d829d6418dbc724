// Package model ties loaded geometry, the bind-pose skeletal and its motions
// together and prepares them for skinning and collision queries.
package model

import (
	"fmt"

	"skelanim/internal/collision"
	"skelanim/internal/mathutil"
	"skelanim/internal/motion"
	"skelanim/internal/skeleton"
)

// Mesh is triangle-list geometry. BoneIndices holds one bone per vertex and
// is empty for static meshes.
type Mesh struct {
	Name        string
	Positions   []mathutil.Vec3
	Normals     []mathutil.Vec3
	BoneIndices []int
	Indices     []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Source is what a loader hands to the animation core: meshes, the bind pose
// and the motions authored for it.
type Source struct {
	Name     string
	Meshes   []Mesh
	Skeletal []skeleton.Node
	Motions  []motion.Motion
	// BoneOffsets maps mesh space into each bone's space. Nil means the
	// inverse of the bind pose's global matrices.
	BoneOffsets []mathutil.Mat4
}

// Validate checks the skeletal order and that every keyframe of every motion
// matches the skeletal's bone count and time order.
func (s *Source) Validate() error {
	if err := skeleton.ValidateOrder(s.Skeletal); err != nil {
		return fmt.Errorf("model: %s: %w", s.Name, err)
	}
	for i := range s.Motions {
		m := &s.Motions[i]
		if !m.IsSorted() {
			return fmt.Errorf("model: %s: motion %q keyframes out of order", s.Name, m.Name)
		}
		for k := range m.KeyFrames {
			if n := len(m.KeyFrames[k].KeyPose); n != len(s.Skeletal) {
				return fmt.Errorf("model: %s: motion %q keyframe %d has %d bones, skeletal has %d",
					s.Name, m.Name, k, n, len(s.Skeletal))
			}
		}
	}
	if s.BoneOffsets != nil && len(s.BoneOffsets) != len(s.Skeletal) {
		return fmt.Errorf("model: %s: %d bone offsets for %d bones", s.Name, len(s.BoneOffsets), len(s.Skeletal))
	}
	return nil
}

// Kind is KindSkinning when there is a skeletal and at least one mesh is
// bound to it.
func (s *Source) Kind() Kind {
	if len(s.Skeletal) == 0 {
		return KindStatic
	}
	for i := range s.Meshes {
		if len(s.Meshes[i].BoneIndices) > 0 {
			return KindSkinning
		}
	}
	return KindStatic
}

// NewMotionHolder copies the source's motions into a new holder.
func (s *Source) NewMotionHolder() *motion.Holder {
	return motion.NewHolder(s.Motions...)
}

// BindPose returns the resolved bind-pose skeletal.
func (s *Source) BindPose() (*skeleton.Pose, error) {
	p, err := skeleton.NewPose(s.Skeletal)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", s.Name, err)
	}
	p.UpdateTransformMatrices()
	return p, nil
}

// PolygonGroup builds a collision soup from the unskinned mesh positions.
func (s *Source) PolygonGroup(cull collision.CullMode) *collision.PolygonGroup {
	g := &collision.PolygonGroup{Cull: cull}
	for mi := range s.Meshes {
		m := &s.Meshes[mi]
		for t := 0; t+2 < len(m.Indices); t += 3 {
			a, b, c := int(m.Indices[t]), int(m.Indices[t+1]), int(m.Indices[t+2])
			if a >= len(m.Positions) || b >= len(m.Positions) || c >= len(m.Positions) {
				continue
			}
			g.Polygons = append(g.Polygons, collision.Polygon{
				Vertices: [3]mathutil.Vec3{m.Positions[a], m.Positions[b], m.Positions[c]},
			})
		}
	}
	return g
}
