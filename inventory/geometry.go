package inventory

import (
	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// placedShape is a text shape with its absolute position resolved
// through any enclosing groups, in inches.
type placedShape struct {
	shape *pptx.TextShape
	left  float64
	top   float64
}

// resolveShapes walks a shape tree accumulating group offsets and
// returns the qualifying text shapes with absolute positions, in
// document order. Groups themselves are never emitted; a group with no
// qualifying descendants contributes nothing.
func resolveShapes(shapes []pptx.Shape, offsetX, offsetY pptx.EMU) []placedShape {
	var out []placedShape
	for _, sh := range shapes {
		switch v := sh.(type) {
		case *pptx.GroupShape:
			gx, gy := v.Offset()
			// Children are positioned in the group's child space;
			// rebase through chOff before adding the group offset.
			childOffX := offsetX + gx - v.ChildOffsetX
			childOffY := offsetY + gy - v.ChildOffsetY
			out = append(out, resolveShapes(v.Shapes, childOffX, childOffY)...)
		case *pptx.TextShape:
			if !qualifies(v) {
				continue
			}
			x, y := v.Offset()
			out = append(out, placedShape{
				shape: v,
				left:  pptx.EMUToInch(offsetX + x),
				top:   pptx.EMUToInch(offsetY + y),
			})
		}
	}
	return out
}
