// Package raster draws CPU previews of posed skeletal meshes.
package raster

import (
	"errors"
	"image"
	"math"

	"skelanim/internal/mathutil"
	"skelanim/internal/model"
	"skelanim/internal/skeleton"
)

var (
	meshColor  = [3]uint8{160, 160, 170}
	boneColor  = [3]uint8{255, 196, 48}
	jointColor = [3]uint8{230, 64, 48}
)

// Framing maps view-space coordinates onto the render target.
type Framing struct {
	Center mathutil.Vec3
	Scale  float64
}

// Options controls RenderPose. Zero values pick defaults.
type Options struct {
	Size        int
	Supersample int
	View        mathutil.Mat3
	// Framing fixes the camera across frames; zero fits this pose alone.
	Framing   Framing
	ShowBones bool
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = 256
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	if o.View == (mathutil.Mat3{}) {
		o.View = mathutil.PreviewView
	}
	return o
}

// RenderSize is the pixel size of the supersampled target.
func (o Options) RenderSize() int {
	o = o.withDefaults()
	return o.Size * o.Supersample
}

func (o Options) margin() int {
	o = o.withDefaults()
	return 16 * o.Supersample
}

// SkinPose returns the posed vertex positions of every mesh. Bones past
// model.MaxBonesPerDraw keep their stored positions.
func SkinPose(meshes []model.Mesh, pose []skeleton.Node, offsets []mathutil.Mat4) ([][]mathutil.Vec3, error) {
	mats, err := model.SkinningMatrices(pose, offsets)
	if err != nil && !errors.Is(err, model.ErrTooManyBones) {
		return nil, err
	}
	out := make([][]mathutil.Vec3, len(meshes))
	for i := range meshes {
		out[i] = model.SkinVertices(&meshes[i], mats)
	}
	return out, nil
}

// JointPositions returns the global origin of every bone.
func JointPositions(pose []skeleton.Node) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(pose))
	for i := range pose {
		out[i] = pose[i].Global.Translation()
	}
	return out
}

// FitFraming centres the view-space bounding box of points and scales its
// larger side to fill the target minus a margin.
func FitFraming(points []mathutil.Vec3, opts Options) Framing {
	opts = opts.withDefaults()
	if len(points) == 0 {
		return Framing{Scale: 1}
	}

	allMin := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	allMax := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		tv := opts.View.MulVec3(p)
		for k := 0; k < 3; k++ {
			allMin[k] = math.Min(allMin[k], tv[k])
			allMax[k] = math.Max(allMax[k], tv[k])
		}
	}

	span := math.Max(allMax[0]-allMin[0], allMax[1]-allMin[1])
	if span < 0.001 {
		span = 0.001
	}
	return Framing{
		Center: allMin.Add(allMax).Scale(0.5),
		Scale:  float64(opts.RenderSize()-2*opts.margin()) / span,
	}
}

func project(p mathutil.Vec3, opts *Options, f *Framing, renderSize int) mathutil.Vec3 {
	tv := opts.View.MulVec3(p).Sub(f.Center)
	half := float64(renderSize) / 2
	return mathutil.Vec3{
		half + tv[0]*f.Scale,
		half - tv[1]*f.Scale,
		tv[2],
	}
}

// RenderPose skins meshes with pose and rasterizes them at the
// supersampled size, optionally overlaying the skeleton.
func RenderPose(meshes []model.Mesh, pose []skeleton.Node, offsets []mathutil.Mat4, opts Options) (*image.NRGBA, error) {
	opts = opts.withDefaults()
	renderSize := opts.RenderSize()

	skinned, err := SkinPose(meshes, pose, offsets)
	if err != nil {
		return nil, err
	}
	joints := JointPositions(pose)

	framing := opts.Framing
	if framing.Scale <= 0 {
		var pts []mathutil.Vec3
		for _, s := range skinned {
			pts = append(pts, s...)
		}
		framing = FitFraming(append(pts, joints...), opts)
	}

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	for mi := range meshes {
		pos := skinned[mi]
		screen := make([]mathutil.Vec3, len(pos))
		for i, p := range pos {
			screen[i] = project(p, &opts, &framing, renderSize)
		}

		idx := meshes[mi].Indices
		for t := 0; t+2 < len(idx); t += 3 {
			a, b, c := int(idx[t]), int(idx[t+1]), int(idx[t+2])
			if a >= len(screen) || b >= len(screen) || c >= len(screen) {
				continue
			}
			RasterizeTriangle(fb, screen[a], screen[b], screen[c], meshColor, &lc)
		}
	}

	if opts.ShowBones {
		drawSkeleton(fb, pose, joints, &opts, &framing, renderSize)
	}

	return fb.Image(), nil
}

func drawSkeleton(fb *FrameBuffer, pose []skeleton.Node, joints []mathutil.Vec3, opts *Options, f *Framing, renderSize int) {
	width := opts.Supersample * 2
	screen := make([]mathutil.Vec3, len(joints))
	for i, j := range joints {
		screen[i] = project(j, opts, f, renderSize)
	}
	for i := range pose {
		pi := pose[i].Bone.ParentIndex
		if pi < 0 || pi >= len(screen) {
			continue
		}
		fb.DrawLine(screen[pi][0], screen[pi][1], screen[i][0], screen[i][1], width, boneColor)
	}
	for _, s := range screen {
		fb.DrawDot(s[0], s[1], width*2, jointColor)
	}
}
