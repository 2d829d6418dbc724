package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Strip lays frames out left to right on one transparent canvas. The cell
// size is the largest frame; smaller frames are centred in their cell.
func Strip(frames []*image.NRGBA) *image.NRGBA {
	cellW, cellH := 0, 0
	for _, f := range frames {
		cellW = max(cellW, f.Bounds().Dx())
		cellH = max(cellH, f.Bounds().Dy())
	}

	out := image.NewNRGBA(image.Rect(0, 0, cellW*len(frames), cellH))
	for i, f := range frames {
		b := f.Bounds()
		at := image.Pt(i*cellW+(cellW-b.Dx())/2, (cellH-b.Dy())/2)
		draw.Draw(out, image.Rectangle{Min: at, Max: at.Add(b.Size())}, f, b.Min, draw.Src)
	}
	return out
}
