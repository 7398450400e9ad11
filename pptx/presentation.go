package pptx

import "fmt"

// MasterStyles carries the default font sizes resolved from the slide
// master's txStyles block, in points. Zero means the master did not
// declare one.
type MasterStyles struct {
	TitleSize float64
	BodySize  float64
	OtherSize float64
}

// DefaultFontSize returns the master default for a placeholder slot.
// Title-family placeholders resolve against the title style, everything
// else against the body style.
func (m MasterStyles) DefaultFontSize(ph PlaceholderType) float64 {
	if ph.IsTitle() {
		return m.TitleSize
	}
	return m.BodySize
}

// Presentation is an in-memory deck.
type Presentation struct {
	slides      []*Slide
	slideWidth  EMU
	slideHeight EMU
	Styles      MasterStyles

	Title   string
	Author  string
	Subject string
}

// New creates an empty 16:9 presentation (13.333 x 7.5 inches).
func New() *Presentation {
	return &Presentation{
		slideWidth:  12192000,
		slideHeight: 6858000,
	}
}

// SlideSize returns the slide canvas extent in EMU.
func (p *Presentation) SlideSize() (EMU, EMU) { return p.slideWidth, p.slideHeight }

// SetSlideSize sets the slide canvas extent in EMU.
func (p *Presentation) SetSlideSize(cx, cy EMU) {
	p.slideWidth, p.slideHeight = cx, cy
}

// Slides returns the deck in document order. The slice is the live
// backing store; callers must not reorder it directly.
func (p *Presentation) Slides() []*Slide { return p.slides }

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int { return len(p.slides) }

// AddSlide appends an empty slide and returns it.
func (p *Presentation) AddSlide() *Slide {
	s := &Slide{}
	p.slides = append(p.slides, s)
	return s
}

// AppendSlide appends an existing slide, used when rebuilding a deck
// from copies.
func (p *Presentation) AppendSlide(s *Slide) {
	p.slides = append(p.slides, s)
}

// Slide returns the slide at a 0-based index.
func (p *Presentation) Slide(i int) (*Slide, error) {
	if i < 0 || i >= len(p.slides) {
		return nil, fmt.Errorf("slide index %d out of range [0,%d)", i, len(p.slides))
	}
	return p.slides[i], nil
}

// MoveSlide moves the slide at from to position to, shifting the rest.
func (p *Presentation) MoveSlide(from, to int) error {
	n := len(p.slides)
	if from < 0 || from >= n {
		return fmt.Errorf("slide index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("slide index %d out of range [0,%d)", to, n)
	}
	s := p.slides[from]
	p.slides = append(p.slides[:from], p.slides[from+1:]...)
	rest := append([]*Slide{s}, p.slides[to:]...)
	p.slides = append(p.slides[:to], rest...)
	return nil
}

// RemoveSlide deletes the slide at a 0-based index.
func (p *Presentation) RemoveSlide(i int) error {
	if i < 0 || i >= len(p.slides) {
		return fmt.Errorf("slide index %d out of range [0,%d)", i, len(p.slides))
	}
	p.slides = append(p.slides[:i], p.slides[i+1:]...)
	return nil
}

// ReplaceSlides swaps in a new deck order. Used by rearranging, where
// the target order is rebuilt wholesale from an index sequence.
func (p *Presentation) ReplaceSlides(slides []*Slide) {
	p.slides = slides
}
