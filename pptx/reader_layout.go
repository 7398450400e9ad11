package pptx

import "strings"

// applyLayoutInheritance fills in what a slide's placeholders inherit
// from their slide layout. Template decks routinely omit a:xfrm on
// placeholder shapes and rely on the layout to position them, so a
// zero-sized placeholder takes the layout slot's geometry. Text insets
// and the default run size inherit the same way.
func (pr *packageReader) applyLayoutInheritance(slidePart string, slide *Slide) {
	rels, err := pr.readRels(slidePart)
	if err != nil {
		return
	}
	var layoutPart string
	for _, rel := range rels {
		if strings.HasSuffix(rel.Type, "/slideLayout") {
			layoutPart = resolveTarget(slidePart, rel.Target)
			break
		}
	}
	if layoutPart == "" {
		return
	}
	data, err := pr.readFile(layoutPart)
	if err != nil {
		return
	}
	layout, err := parseSlideXML(data)
	if err != nil {
		return
	}
	slots := collectPlaceholders(layout.Shapes)
	if len(slots) == 0 {
		return
	}
	for _, sh := range slide.Shapes {
		ts, ok := sh.(*TextShape)
		if !ok || ts.Placeholder == nil {
			continue
		}
		if slot := matchPlaceholder(slots, ts.Placeholder); slot != nil {
			inheritPlaceholder(ts, slot)
		}
	}
}

func collectPlaceholders(shapes []Shape) []*TextShape {
	var out []*TextShape
	for _, sh := range shapes {
		switch v := sh.(type) {
		case *TextShape:
			if v.Placeholder != nil {
				out = append(out, v)
			}
		case *GroupShape:
			out = append(out, collectPlaceholders(v.Shapes)...)
		}
	}
	return out
}

// matchPlaceholder finds the layout slot for a slide placeholder:
// exact type and index first, then type alone.
func matchPlaceholder(slots []*TextShape, ref *PlaceholderRef) *TextShape {
	for _, slot := range slots {
		if slot.Placeholder.Type == ref.Type && slot.Placeholder.Index == ref.Index {
			return slot
		}
	}
	for _, slot := range slots {
		if slot.Placeholder.Type == ref.Type {
			return slot
		}
	}
	return nil
}

func inheritPlaceholder(ts, slot *TextShape) {
	if w, h := ts.Extent(); w == 0 && h == 0 {
		ts.SetOffset(slot.Offset())
		ts.SetExtent(slot.Extent())
	}
	if !ts.Margins.Set && slot.Margins.Set {
		ts.Margins = slot.Margins
	}
	if ts.DefaultFontSize == 0 {
		ts.DefaultFontSize = slot.DefaultFontSize
	}
}
