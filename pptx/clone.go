package pptx

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Clone returns a deep copy of the slide: mutating the copy's shapes,
// paragraphs or runs never touches the original.
func (s *Slide) Clone() (*Slide, error) {
	out := &Slide{Name: s.Name}
	if s.Background != nil {
		bg := *s.Background
		out.Background = &bg
	}
	for i, sh := range s.Shapes {
		c, err := cloneShape(sh)
		if err != nil {
			return nil, fmt.Errorf("clone shape %d: %w", i, err)
		}
		out.Shapes = append(out.Shapes, c)
	}
	return out, nil
}

func cloneShape(sh Shape) (Shape, error) {
	switch v := sh.(type) {
	case *TextShape:
		c := &TextShape{
			BaseShape:       v.BaseShape,
			Preset:          v.Preset,
			WordWrap:        v.WordWrap,
			Anchor:          v.Anchor,
			Margins:         v.Margins,
			DefaultFontSize: v.DefaultFontSize,
		}
		if v.Placeholder != nil {
			ph := *v.Placeholder
			c.Placeholder = &ph
		}
		if v.Fill != nil {
			f := *v.Fill
			c.Fill = &f
		}
		if v.Border != nil {
			b := *v.Border
			c.Border = &b
		}
		if err := deepcopy.Copy(&c.Paragraphs, v.Paragraphs); err != nil {
			return nil, fmt.Errorf("copy paragraphs: %w", err)
		}
		return c, nil
	case *GroupShape:
		c := &GroupShape{
			BaseShape:    v.BaseShape,
			ChildOffsetX: v.ChildOffsetX,
			ChildOffsetY: v.ChildOffsetY,
			ChildExtentX: v.ChildExtentX,
			ChildExtentY: v.ChildExtentY,
		}
		for i, child := range v.Shapes {
			cc, err := cloneShape(child)
			if err != nil {
				return nil, fmt.Errorf("clone group child %d: %w", i, err)
			}
			c.Shapes = append(c.Shapes, cc)
		}
		return c, nil
	case *PictureShape:
		c := *v
		c.Data = append([]byte(nil), v.Data...)
		return &c, nil
	case *LineShape:
		c := *v
		return &c, nil
	case *FrameShape:
		c := *v
		return &c, nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", sh)
	}
}
