// Package thumbnail renders slide decks into contact-sheet style grid
// images. Rendering goes through headless LibreOffice and a PDF
// rasterizer; grid composition is pure Go.
package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// Options controls grid generation.
type Options struct {
	// OutlineTextShapes draws a red outline around every non-empty
	// text shape so layout problems stand out at thumbnail size.
	OutlineTextShapes bool
}

// CreateGrids renders every slide of a deck and composes grid pages of
// up to 60 thumbnails under outputDir. It returns the grid file paths
// in page order.
func CreateGrids(ctx context.Context, pptxPath, outputDir string, opts Options) ([]string, error) {
	workDir, err := os.MkdirTemp("", "pptx-thumbs-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	pdf, err := renderPDF(ctx, pptxPath, workDir)
	if err != nil {
		return nil, err
	}
	pagePaths, err := renderPages(ctx, pdf, workDir)
	if err != nil {
		return nil, err
	}

	images := make([]image.Image, len(pagePaths))
	for i, p := range pagePaths {
		img, err := readPNG(p)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		images[i] = img
	}

	if opts.OutlineTextShapes {
		if err := outlineTextShapes(pptxPath, images); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	face := labelFace()
	ranges := pageRanges(len(images))
	outs := make([]string, len(ranges))

	g, _ := errgroup.WithContext(ctx)
	for i, rng := range ranges {
		i, rng := i, rng
		g.Go(func() error {
			grid := composeGrid(images[rng[0]:rng[1]], rng[0], face)
			name := "thumbnails.png"
			if len(ranges) > 1 {
				name = fmt.Sprintf("thumbnails-%d.png", i+1)
			}
			path := filepath.Join(outputDir, name)
			if err := writePNG(path, grid); err != nil {
				return err
			}
			outs[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

func labelFace() font.Face {
	return pptx.NewFontCache().MeasureFace("Liberation Sans", labelFontSize, 96)
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// outlineTextShapes marks text shape bounds on the rendered pages.
// Pages and slides correspond one to one in document order.
func outlineTextShapes(pptxPath string, images []image.Image) error {
	pres, err := pptx.Open(pptxPath)
	if err != nil {
		return err
	}
	slideW, slideH := pres.SlideSize()
	if slideW <= 0 || slideH <= 0 {
		return fmt.Errorf("deck has no slide size")
	}
	red := color.RGBA{220, 30, 30, 255}

	for i, slide := range pres.Slides() {
		if i >= len(images) {
			break
		}
		rgba, ok := images[i].(*image.RGBA)
		if !ok {
			rgba = image.NewRGBA(images[i].Bounds())
			drawCopy(rgba, images[i])
			images[i] = rgba
		}
		sx := float64(rgba.Bounds().Dx()) / float64(slideW)
		sy := float64(rgba.Bounds().Dy()) / float64(slideH)
		for _, r := range textRects(slide.Shapes, 0, 0) {
			px := image.Rect(
				int(float64(r.left)*sx), int(float64(r.top)*sy),
				int(float64(r.left+r.width)*sx), int(float64(r.top+r.height)*sy))
			drawBorder(rgba, px, red, 3)
		}
	}
	return nil
}

type emuRect struct {
	left, top, width, height pptx.EMU
}

// textRects flattens a shape tree into slide-absolute text shape
// bounds. Group children rebase through the group's child offset.
func textRects(shapes []pptx.Shape, offX, offY pptx.EMU) []emuRect {
	var rects []emuRect
	for _, sh := range shapes {
		switch s := sh.(type) {
		case *pptx.GroupShape:
			gx, gy := s.Offset()
			rects = append(rects, textRects(s.Shapes,
				offX+gx-s.ChildOffsetX, offY+gy-s.ChildOffsetY)...)
		case *pptx.TextShape:
			if strings.TrimSpace(s.Text()) == "" {
				continue
			}
			x, y := s.Offset()
			w, h := s.Extent()
			rects = append(rects, emuRect{offX + x, offY + y, w, h})
		}
	}
	return rects
}

func drawCopy(dst *image.RGBA, src image.Image) {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
}
