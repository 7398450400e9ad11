package thumbnail

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

func TestLayoutColumnsClamped(t *testing.T) {
	assert.Equal(t, 3, layoutFor(1).Columns)
	assert.Equal(t, 3, layoutFor(9).Columns)
	assert.Equal(t, 4, layoutFor(16).Columns)
	assert.Equal(t, 5, layoutFor(25).Columns)
	assert.Equal(t, 6, layoutFor(36).Columns)
	assert.Equal(t, 6, layoutFor(60).Columns)
}

func TestLayoutThumbWidthAndRows(t *testing.T) {
	l := layoutFor(10)
	assert.Equal(t, 4, l.Columns)
	assert.Equal(t, gridWidth/5, l.ThumbWidth)
	assert.Equal(t, 3, l.Rows)
	assert.Greater(t, l.Gap, 0)
}

func TestPageRanges(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 12}}, pageRanges(12))
	assert.Equal(t, [][2]int{{0, 60}, {60, 75}}, pageRanges(75))
	assert.Equal(t, [][2]int{{0, 60}, {60, 120}, {120, 121}}, pageRanges(121))
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestScaleToWidthKeepsAspect(t *testing.T) {
	src := solid(200, 100, color.Black)
	dst := scaleToWidth(src, 100)
	assert.Equal(t, 100, dst.Bounds().Dx())
	assert.Equal(t, 50, dst.Bounds().Dy())
}

func TestComposeGridGeometry(t *testing.T) {
	blue := color.RGBA{0, 0, 200, 255}
	thumbs := make([]image.Image, 5)
	for i := range thumbs {
		thumbs[i] = solid(320, 180, blue)
	}
	grid := composeGrid(thumbs, 0, labelFace())
	require.Equal(t, gridWidth, grid.Bounds().Dx())

	layout := layoutFor(5)
	// Center of the first thumbnail cell holds thumbnail pixels.
	cx := layout.Gap + layout.ThumbWidth/2
	cy := layout.Gap + 10
	r, g, b, _ := grid.At(cx, cy).RGBA()
	assert.True(t, b > r && b > g, "expected thumbnail pixel, got %v", grid.At(cx, cy))

	// Top-left corner stays background white.
	r, g, b, _ = grid.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestDrawBorderStaysInside(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	drawBorder(img, image.Rect(5, 5, 15, 15), color.RGBA{255, 0, 0, 255}, 2)
	r, _, _, _ := img.At(5, 5).RGBA()
	assert.NotZero(t, r)
	r, _, _, _ = img.At(9, 9).RGBA()
	assert.Zero(t, r)
}

func textShape(text string, x, y, w, h pptx.EMU) *pptx.TextShape {
	ts := &pptx.TextShape{
		Paragraphs: []*pptx.Paragraph{{Runs: []*pptx.TextRun{{Text: text}}}},
	}
	ts.SetOffset(x, y)
	ts.SetExtent(w, h)
	return ts
}

func TestTextRectsAccumulateGroupOffsets(t *testing.T) {
	inner := textShape("hello", pptx.Inch(1), pptx.Inch(1), pptx.Inch(2), pptx.Inch(1))
	group := &pptx.GroupShape{
		ChildOffsetX: pptx.Inch(0.5),
		ChildOffsetY: pptx.Inch(0.5),
		Shapes:       []pptx.Shape{inner},
	}
	group.SetOffset(pptx.Inch(2), pptx.Inch(2))

	rects := textRects([]pptx.Shape{group}, 0, 0)
	require.Len(t, rects, 1)
	assert.Equal(t, pptx.Inch(2.5), rects[0].left)
	assert.Equal(t, pptx.Inch(2.5), rects[0].top)
	assert.Equal(t, pptx.Inch(2), rects[0].width)
}

func TestTextRectsSkipEmptyShapes(t *testing.T) {
	empty := textShape("   ", 0, 0, pptx.Inch(1), pptx.Inch(1))
	rects := textRects([]pptx.Shape{empty}, 0, 0)
	assert.Empty(t, rects)
}
