package inventory

// overlapTolerance is the minimum intersection extent, in inches, on
// both axes before two shapes count as overlapping. Hairline contact
// from touching edges is not an overlap.
const overlapTolerance = 0.05

// bbox is an axis-aligned box in inches.
type bbox struct {
	Left, Top, Right, Bottom float64
}

func recordBBox(r *ShapeRecord) bbox {
	return bbox{Left: r.Left, Top: r.Top, Right: r.Left + r.Width, Bottom: r.Top + r.Height}
}

// intersection returns the overlap extents of two boxes. Non-positive
// values mean no overlap on that axis.
func (b bbox) intersection(o bbox) (w, h float64) {
	w = min(b.Right, o.Right) - max(b.Left, o.Left)
	h = min(b.Bottom, o.Bottom) - max(b.Top, o.Top)
	return w, h
}

// detectOverlaps runs the pairwise intersection test and records areas
// symmetrically into both shapes' overlap maps. With fewer than two
// records it is a no-op.
func detectOverlaps(records []*ShapeRecord) {
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			w, h := recordBBox(a).intersection(recordBBox(b))
			if w <= overlapTolerance || h <= overlapTolerance {
				continue
			}
			area := round2(w * h)
			if a.Overlap == nil {
				m := newOverlapMap()
				a.Overlap = &Overlap{OverlappingShapes: m}
			}
			if b.Overlap == nil {
				m := newOverlapMap()
				b.Overlap = &Overlap{OverlappingShapes: m}
			}
			a.Overlap.OverlappingShapes.set(b.ID, area)
			b.Overlap.OverlappingShapes.set(a.ID, area)
		}
	}
}
