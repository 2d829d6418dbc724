package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Image copies the color buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// SetPixel writes an opaque color, ignoring depth. Out-of-bounds writes are
// dropped.
func (fb *FrameBuffer) SetPixel(x, y int, c [3]uint8) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := (y*fb.Width + x) * 4
	fb.Color[i] = c[0]
	fb.Color[i+1] = c[1]
	fb.Color[i+2] = c[2]
	fb.Color[i+3] = 255
}

// DrawLine draws a thick overlay line between two screen points.
func (fb *FrameBuffer) DrawLine(x0, y0, x1, y1 float64, width int, c [3]uint8) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		fb.DrawDot(x0, y0, width, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		fb.DrawDot(x0+dx*t, y0+dy*t, width, c)
	}
}

// DrawDot fills a square of side size centred on (x, y).
func (fb *FrameBuffer) DrawDot(x, y float64, size int, c [3]uint8) {
	if size < 1 {
		size = 1
	}
	cx, cy := int(math.Round(x)), int(math.Round(y))
	half := size / 2
	for oy := -half; oy < size-half; oy++ {
		for ox := -half; ox < size-half; ox++ {
			fb.SetPixel(cx+ox, cy+oy, c)
		}
	}
}
