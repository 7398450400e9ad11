package inventory

import (
	"fmt"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// SlideShapes binds a slide id to its qualifying text shapes in the
// same reading order and under the same ids that extraction assigns.
type SlideShapes struct {
	SlideID string
	Shapes  map[string]*pptx.TextShape
	Order   []string
}

// ShapesInReadingOrder walks the deck with the extraction pipeline's
// resolver, filter and sorter, and returns the id-to-shape binding per
// slide. Callers that rewrite shape text use this to interpret the ids
// a prior extraction handed out. Slides without qualifying shapes are
// omitted, matching extraction.
func ShapesInReadingOrder(pres *pptx.Presentation) []SlideShapes {
	var out []SlideShapes
	for i, slide := range pres.Slides() {
		placed := resolveShapes(slide.Shapes, 0, 0)
		if len(placed) == 0 {
			continue
		}
		records := make([]*ShapeRecord, 0, len(placed))
		byRecord := make(map[*ShapeRecord]*pptx.TextShape, len(placed))
		for _, ps := range placed {
			cx, cy := ps.shape.Extent()
			rec := &ShapeRecord{
				Left:   round2(ps.left),
				Top:    round2(ps.top),
				Width:  round2(pptx.EMUToInch(cx)),
				Height: round2(pptx.EMUToInch(cy)),
			}
			records = append(records, rec)
			byRecord[rec] = ps.shape
		}
		records = sortReadingOrder(records)

		ss := SlideShapes{
			SlideID: fmt.Sprintf("slide-%d", i),
			Shapes:  make(map[string]*pptx.TextShape, len(records)),
		}
		for n, rec := range records {
			id := fmt.Sprintf("shape-%d", n)
			ss.Shapes[id] = byRecord[rec]
			ss.Order = append(ss.Order, id)
		}
		out = append(out, ss)
	}
	return out
}
