package raster

import (
	"math"

	"skelanim/internal/mathutil"
)

// RasterizeTriangle fills a screen-space triangle (x, y in pixels, z larger
// is nearer) with one flat-shaded color, testing and writing the z-buffer.
// Both windings are drawn.
func RasterizeTriangle(fb *FrameBuffer, a, b, c mathutil.Vec3, base [3]uint8, lc *LightConfig) {
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Len() < 1e-8 {
		return
	}
	col := lc.ShadeColor(base, lc.ComputeShade(normal.Normalize()))

	x0, y0, z0 := a[0], a[1], a[2]
	x1, y1, z1 := b[0], b[1], b[2]
	x2, y2, z2 := c[0], c[1], c[2]

	// Bounding box
	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Pixel loop, zero allocations
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = col[0]
			fb.Color[pxIdx+1] = col[1]
			fb.Color[pxIdx+2] = col[2]
			fb.Color[pxIdx+3] = 255
		}
	}
}
