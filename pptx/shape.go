package pptx

// Shape is a node in a slide's shape tree. Offsets and extents are in EMU
// and are local to the containing group, if any.
type Shape interface {
	Name() string
	Offset() (x, y EMU)
	Extent() (cx, cy EMU)
	base() *BaseShape
}

// BaseShape carries the geometry and identity every shape kind shares.
type BaseShape struct {
	name     string
	offsetX  EMU
	offsetY  EMU
	width    EMU
	height   EMU
	rotation int
	hidden   bool
}

func (b *BaseShape) Name() string         { return b.name }
func (b *BaseShape) Offset() (EMU, EMU)   { return b.offsetX, b.offsetY }
func (b *BaseShape) Extent() (EMU, EMU)   { return b.width, b.height }
func (b *BaseShape) Hidden() bool         { return b.hidden }
func (b *BaseShape) base() *BaseShape     { return b }
func (b *BaseShape) SetName(name string)  { b.name = name }
func (b *BaseShape) SetOffset(x, y EMU)   { b.offsetX, b.offsetY = x, y }
func (b *BaseShape) SetExtent(cx, cy EMU) { b.width, b.height = cx, cy }
func (b *BaseShape) SetRotation(deg int)  { b.rotation = deg }

// PlaceholderType identifies the layout slot a placeholder shape fills.
type PlaceholderType string

const (
	PlaceholderTitle       PlaceholderType = "title"
	PlaceholderCenterTitle PlaceholderType = "ctrTitle"
	PlaceholderSubtitle    PlaceholderType = "subTitle"
	PlaceholderBody        PlaceholderType = "body"
	PlaceholderFooter      PlaceholderType = "ftr"
	PlaceholderSlideNumber PlaceholderType = "sldNum"
	PlaceholderDate        PlaceholderType = "dt"
)

// IsTitle reports whether the type inherits from the master's title style.
func (t PlaceholderType) IsTitle() bool {
	return t == PlaceholderTitle || t == PlaceholderCenterTitle
}

// PlaceholderRef is the nvPr/ph binding of a shape to a layout slot.
type PlaceholderRef struct {
	Type  PlaceholderType
	Index int
}

// Insets are the text-frame internal margins. Set reports whether the
// source markup carried explicit bodyPr inset attributes.
type Insets struct {
	Left, Top, Right, Bottom EMU
	Set                      bool
}

// TextShape is a p:sp: a text box, an autoshape, or a placeholder. A
// non-empty Preset means autoshape geometry (rect, roundRect, ellipse).
type TextShape struct {
	BaseShape
	Preset      string
	Placeholder *PlaceholderRef
	Paragraphs  []*Paragraph
	WordWrap    bool
	Anchor      string
	Margins     Insets
	Fill        *Fill
	Border      *Border

	// DefaultFontSize is the run size in points that unstyled text in
	// this shape inherits, from the shape's own lstStyle or from its
	// layout placeholder. Zero when nothing sets one.
	DefaultFontSize float64
}

// HasTextFrame reports whether the shape carries a text body at all.
// Every p:sp does; the method exists so callers can treat the shape
// tree uniformly.
func (s *TextShape) HasTextFrame() bool { return true }

// Text concatenates all run text across paragraphs, joining paragraphs
// with newlines.
func (s *TextShape) Text() string {
	var out []byte
	for i, p := range s.Paragraphs {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, p.Text()...)
	}
	return string(out)
}

// GroupShape nests child shapes inside a local coordinate space. The
// child offset (a:chOff) rebases the children's coordinates.
type GroupShape struct {
	BaseShape
	ChildOffsetX EMU
	ChildOffsetY EMU
	ChildExtentX EMU
	ChildExtentY EMU
	Shapes       []Shape
}

// PictureShape is a p:pic. Data is the embedded media bytes when the
// shape was read from a package, or the bytes to embed when writing.
type PictureShape struct {
	BaseShape
	Data   []byte
	Path   string
	Format string
	relID  string
}

// LineShape is a p:cxnSp connector.
type LineShape struct {
	BaseShape
	Color   string
	WidthPt float64
}

// FrameShape is a p:graphicFrame (table or chart host). The content is
// not modeled; the shape participates in geometry only.
type FrameShape struct {
	BaseShape
}

// Fill is a solid fill or an explicit no-fill.
type Fill struct {
	Color string
	None  bool
}

// Border is a solid outline.
type Border struct {
	Color   string
	WidthPt float64
}

// Paragraph is one a:p with its effective paragraph properties.
type Paragraph struct {
	Runs        []*TextRun
	Alignment   string
	Level       int
	Bullet      *Bullet
	SpaceBefore *float64
	SpaceAfter  *float64
	LineSpacing *LineSpacing
}

// Text concatenates the paragraph's run text.
func (p *Paragraph) Text() string {
	var out []byte
	for _, r := range p.Runs {
		out = append(out, r.Text...)
	}
	return string(out)
}

// FirstRun returns the paragraph's leading text run, or nil. Inventory
// collapses a paragraph's style to its first run's.
func (p *Paragraph) FirstRun() *TextRun {
	for _, r := range p.Runs {
		if !r.Break {
			return r
		}
	}
	return nil
}

// TextRun is one a:r, or an a:br when Break is set (Text is "\n").
type TextRun struct {
	Text  string
	Break bool
	Font  Font
}

// Font is the run-level character style. A zero Size means unset.
type Font struct {
	Name       string
	Size       float64
	Bold       bool
	Italic     bool
	Underline  bool
	Color      string
	ThemeColor string
}

// Bullet is the paragraph bullet setting. Exactly one field is active.
type Bullet struct {
	Char    string
	AutoNum string
	None    bool
}

// LineSpacing is either an absolute spacing in points (spcPts) or a
// multiple of the font size (spcPct).
type LineSpacing struct {
	Points   float64
	Multiple float64
}
