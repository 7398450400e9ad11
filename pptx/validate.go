package pptx

import "fmt"

// Validate runs structural checks over the deck and returns one message
// per problem found. An empty slice means the deck is writable.
func (p *Presentation) Validate() []string {
	var problems []string
	if p.slideWidth <= 0 || p.slideHeight <= 0 {
		problems = append(problems, fmt.Sprintf("slide size %dx%d EMU is not positive", p.slideWidth, p.slideHeight))
	}
	for i, slide := range p.slides {
		problems = append(problems, validateShapes(fmt.Sprintf("slide %d", i), slide.Shapes)...)
	}
	return problems
}

func validateShapes(where string, shapes []Shape) []string {
	var problems []string
	for j, shape := range shapes {
		loc := fmt.Sprintf("%s shape %d", where, j)
		cx, cy := shape.Extent()
		if cx < 0 || cy < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative extent %dx%d", loc, cx, cy))
		}
		switch v := shape.(type) {
		case *PictureShape:
			if len(v.Data) == 0 && v.Path == "" {
				problems = append(problems, fmt.Sprintf("%s: picture has no data or path", loc))
			}
		case *TextShape:
			for k, para := range v.Paragraphs {
				for _, run := range para.Runs {
					if run.Font.Size < 0 {
						problems = append(problems, fmt.Sprintf("%s paragraph %d: negative font size", loc, k))
					}
				}
			}
		case *GroupShape:
			problems = append(problems, validateShapes(loc, v.Shapes)...)
		}
	}
	return problems
}
