package model

import (
	"errors"
	"fmt"

	"skelanim/internal/mathutil"
	"skelanim/internal/skeleton"
)

// MaxBonesPerDraw caps the skinning palette uploaded for one draw call.
const MaxBonesPerDraw = 128

// ErrTooManyBones is returned alongside a truncated palette.
var ErrTooManyBones = errors.New("model: skeletal exceeds bones per draw")

// SkinningMatrices returns offset[i] × pose[i].Global for every bone; nil
// offsets stand for identity. Palettes longer than MaxBonesPerDraw are
// truncated and reported with ErrTooManyBones.
func SkinningMatrices(pose []skeleton.Node, offsets []mathutil.Mat4) ([]mathutil.Mat4, error) {
	if offsets != nil && len(pose) != len(offsets) {
		return nil, fmt.Errorf("model: %d pose bones for %d offsets", len(pose), len(offsets))
	}

	n := len(pose)
	var err error
	if n > MaxBonesPerDraw {
		n = MaxBonesPerDraw
		err = fmt.Errorf("%w: %d > %d", ErrTooManyBones, len(pose), MaxBonesPerDraw)
	}

	out := make([]mathutil.Mat4, n)
	for i := 0; i < n; i++ {
		if offsets == nil {
			out[i] = pose[i].Global
			continue
		}
		out[i] = mathutil.Mat4Mul(offsets[i], pose[i].Global)
	}
	return out, err
}

// SkinVertices rigidly skins mesh positions, one bone per vertex. Vertices
// without a valid bone keep their stored position.
func SkinVertices(mesh *Mesh, matrices []mathutil.Mat4) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(mesh.Positions))
	for i, p := range mesh.Positions {
		out[i] = p
		if i >= len(mesh.BoneIndices) {
			continue
		}
		b := mesh.BoneIndices[i]
		if b < 0 || b >= len(matrices) {
			continue
		}
		out[i] = matrices[b].MulPoint(p)
	}
	return out
}
