package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	maxSlidesPerGrid = 60
	renderDPI        = 150
	gridWidth        = 2400
	minColumns       = 3
	maxColumns       = 6
	labelBand        = 34
	labelFontSize    = 16
)

type gridLayout struct {
	Columns    int
	Rows       int
	ThumbWidth int
	Gap        int
}

// layoutFor sizes a grid page for count thumbnails. Thumbnails get
// gridWidth/(cols+1) pixels of width and the leftover space becomes
// uniform gaps.
func layoutFor(count int) gridLayout {
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	if cols < minColumns {
		cols = minColumns
	}
	if cols > maxColumns {
		cols = maxColumns
	}
	tw := gridWidth / (cols + 1)
	return gridLayout{
		Columns:    cols,
		Rows:       (count + cols - 1) / cols,
		ThumbWidth: tw,
		Gap:        (gridWidth - cols*tw) / (cols + 1),
	}
}

// pageRanges splits count slides into per-page [start, end) index
// ranges of at most maxSlidesPerGrid each.
func pageRanges(count int) [][2]int {
	var ranges [][2]int
	for start := 0; start < count; start += maxSlidesPerGrid {
		end := start + maxSlidesPerGrid
		if end > count {
			end = count
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// composeGrid lays page thumbnails onto a white canvas with a
// "Slide N" caption under each. firstSlide is the document index of
// thumbs[0], used for numbering.
func composeGrid(thumbs []image.Image, firstSlide int, face font.Face) *image.RGBA {
	layout := layoutFor(len(thumbs))

	thumbH := 0
	scaled := make([]*image.RGBA, len(thumbs))
	for i, src := range thumbs {
		scaled[i] = scaleToWidth(src, layout.ThumbWidth)
		if h := scaled[i].Bounds().Dy(); h > thumbH {
			thumbH = h
		}
	}
	cellH := thumbH + labelBand

	canvas := image.NewRGBA(image.Rect(0, 0, gridWidth, layout.Rows*cellH+layout.Gap))
	stddraw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, stddraw.Src)

	for i, img := range scaled {
		col := i % layout.Columns
		row := i / layout.Columns
		x := layout.Gap + col*(layout.ThumbWidth+layout.Gap)
		y := layout.Gap + row*cellH
		r := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
		stddraw.Draw(canvas, r, img, img.Bounds().Min, stddraw.Src)
		drawBorder(canvas, r, color.RGBA{180, 180, 180, 255}, 1)

		label := fmt.Sprintf("Slide %d", firstSlide+i+1)
		drawLabel(canvas, face, label, x, layout.ThumbWidth, y+img.Bounds().Dy())
	}
	return canvas
}

func scaleToWidth(src image.Image, width int) *image.RGBA {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, width, 1))
	}
	height := int(math.Round(float64(width) * float64(sb.Dy()) / float64(sb.Dx())))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, xdraw.Over, nil)
	return dst
}

func drawLabel(dst *image.RGBA, face font.Face, label string, x, cellW, top int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{60, 60, 60, 255}),
		Face: face,
	}
	w := d.MeasureString(label)
	d.Dot = fixed.Point26_6{
		X: fixed.I(x+cellW/2) - w/2,
		Y: fixed.I(top + labelBand - 10),
	}
	d.DrawString(label)
}

// drawBorder strokes an axis-aligned rectangle outline of the given
// thickness just inside r.
func drawBorder(dst *image.RGBA, r image.Rectangle, c color.Color, thickness int) {
	r = r.Intersect(dst.Bounds())
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, r.Min.Y+t, c)
			dst.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			dst.Set(r.Min.X+t, y, c)
			dst.Set(r.Max.X-1-t, y, c)
		}
	}
}
