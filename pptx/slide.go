package pptx

// Slide holds one slide's shape tree in document order.
type Slide struct {
	Name       string
	Background *Fill
	Shapes     []Shape
}

// AddShape appends a shape to the slide's tree.
func (s *Slide) AddShape(shape Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// AddTextBox creates a plain text box at the given geometry and returns
// it for further styling.
func (s *Slide) AddTextBox(x, y, cx, cy EMU) *TextShape {
	ts := &TextShape{WordWrap: true}
	ts.SetOffset(x, y)
	ts.SetExtent(cx, cy)
	s.AddShape(ts)
	return ts
}

// AddAutoShape creates an autoshape with the given preset geometry.
func (s *Slide) AddAutoShape(preset string, x, y, cx, cy EMU) *TextShape {
	ts := s.AddTextBox(x, y, cx, cy)
	ts.Preset = preset
	return ts
}

// Text returns all text on the slide, walking nested groups, with
// shapes joined by newlines.
func (s *Slide) Text() string {
	var out []byte
	var walk func(shapes []Shape)
	walk = func(shapes []Shape) {
		for _, sh := range shapes {
			switch v := sh.(type) {
			case *TextShape:
				if t := v.Text(); t != "" {
					if len(out) > 0 {
						out = append(out, '\n')
					}
					out = append(out, t...)
				}
			case *GroupShape:
				walk(v.Shapes)
			}
		}
	}
	walk(s.Shapes)
	return string(out)
}
