package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// Named layouts map to slide dimensions in inches.
var layouts = map[string][2]float64{
	"16:9":       {13.333, 7.5},
	"4:3":        {10.0, 7.5},
	"widescreen": {13.333, 7.5},
	"standard":   {10.0, 7.5},
}

// Spec is a declarative presentation description.
type Spec struct {
	Layout string      `json:"layout,omitempty"`
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
	Title  string      `json:"title,omitempty"`
	Author string      `json:"author,omitempty"`
	Slides []SlideSpec `json:"slides"`
}

// SlideSpec describes one slide.
type SlideSpec struct {
	Background string      `json:"background,omitempty"`
	Shapes     []ShapeSpec `json:"shapes,omitempty"`
}

// ShapeSpec describes one shape. Geometry is in inches; for lines,
// width and height are the end-point offset from (left, top).
type ShapeSpec struct {
	Type   string   `json:"type,omitempty"`
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	Text       string          `json:"text,omitempty"`
	Paragraphs []ParagraphSpec `json:"paragraphs,omitempty"`
	Path       string          `json:"path,omitempty"`

	Fill      string      `json:"fill,omitempty"`
	Border    *BorderSpec `json:"border,omitempty"`
	Color     string      `json:"color,omitempty"`
	LineWidth float64     `json:"line_width,omitempty"`

	WordWrap *bool           `json:"word_wrap,omitempty"`
	VAlign   string          `json:"valign,omitempty"`
	Margin   json.RawMessage `json:"margin,omitempty"`

	// Shorthand style applied when Text is used instead of Paragraphs.
	FontName  string  `json:"font_name,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Alignment string  `json:"alignment,omitempty"`
}

// BorderSpec describes a shape outline.
type BorderSpec struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// ParagraphSpec describes one paragraph of a text frame.
type ParagraphSpec struct {
	Text        string   `json:"text"`
	Alignment   string   `json:"alignment,omitempty"`
	FontName    string   `json:"font_name,omitempty"`
	FontSize    float64  `json:"font_size,omitempty"`
	Bold        bool     `json:"bold,omitempty"`
	Italic      bool     `json:"italic,omitempty"`
	Underline   bool     `json:"underline,omitempty"`
	Color       string   `json:"color,omitempty"`
	Bullet      bool     `json:"bullet,omitempty"`
	BulletChar  string   `json:"bullet_char,omitempty"`
	Level       int      `json:"level,omitempty"`
	SpaceBefore *float64 `json:"space_before,omitempty"`
	SpaceAfter  *float64 `json:"space_after,omitempty"`
	LineSpacing float64  `json:"line_spacing,omitempty"`
}

var alignments = map[string]string{
	"left":    "l",
	"center":  "ctr",
	"right":   "r",
	"justify": "just",
}

var anchors = map[string]string{
	"top":    "t",
	"middle": "ctr",
	"bottom": "b",
}

var shapePresets = map[string]string{
	"rectangle":         "rect",
	"rounded_rectangle": "roundRect",
	"oval":              "ellipse",
}

// FromJSON validates raw spec JSON and builds the presentation in
// memory.
func FromJSON(raw []byte) (*pptx.Presentation, error) {
	if err := validateSpec(raw); err != nil {
		return nil, err
	}
	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decode presentation spec: %w", err)
	}
	return Build(&spec)
}

// CreateFile validates the spec, builds the deck and saves it, creating
// parent directories as needed.
func CreateFile(raw []byte, outputPath string) (*pptx.Presentation, error) {
	pres, err := FromJSON(raw)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := pres.Save(outputPath); err != nil {
		return nil, err
	}
	return pres, nil
}

// Build constructs a presentation from an already decoded spec.
func Build(spec *Spec) (*pptx.Presentation, error) {
	pres := pptx.New()
	pres.Title = spec.Title
	pres.Author = spec.Author

	if dims, ok := layouts[spec.Layout]; ok {
		pres.SetSlideSize(pptx.Inch(dims[0]), pptx.Inch(dims[1]))
	} else if spec.Width > 0 && spec.Height > 0 {
		pres.SetSlideSize(pptx.Inch(spec.Width), pptx.Inch(spec.Height))
	}

	for i, slideSpec := range spec.Slides {
		slide := pres.AddSlide()
		if err := buildSlide(slide, &slideSpec); err != nil {
			return nil, fmt.Errorf("slide %d: %w", i, err)
		}
	}
	return pres, nil
}

func buildSlide(slide *pptx.Slide, spec *SlideSpec) error {
	if spec.Background != "" {
		slide.Background = &pptx.Fill{Color: normalizeColor(spec.Background)}
	}
	for j, shapeSpec := range spec.Shapes {
		if err := buildShape(slide, &shapeSpec); err != nil {
			return fmt.Errorf("shape %d: %w", j, err)
		}
	}
	return nil
}

func buildShape(slide *pptx.Slide, spec *ShapeSpec) error {
	left, top := specOrDefault(spec.Left, 0.5), specOrDefault(spec.Top, 0.5)
	width, height := specOrDefault(spec.Width, 5), specOrDefault(spec.Height, 1)
	x, y := pptx.Inch(left), pptx.Inch(top)
	cx, cy := pptx.Inch(width), pptx.Inch(height)

	kind := spec.Type
	if kind == "" {
		kind = "textbox"
	}
	switch kind {
	case "textbox":
		ts := slide.AddTextBox(x, y, cx, cy)
		return applyText(ts, spec)
	case "rectangle", "rounded_rectangle", "oval":
		ts := slide.AddAutoShape(shapePresets[kind], x, y, cx, cy)
		applyFill(ts, spec)
		if spec.Text != "" || len(spec.Paragraphs) > 0 {
			return applyText(ts, spec)
		}
		return nil
	case "image":
		if spec.Path == "" {
			return fmt.Errorf("image shape requires a path")
		}
		data, err := os.ReadFile(spec.Path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		pic := &pptx.PictureShape{Data: data, Format: imageFormat(spec.Path)}
		pic.SetOffset(x, y)
		pic.SetExtent(cx, cy)
		slide.AddShape(pic)
		return nil
	case "line":
		line := &pptx.LineShape{Color: normalizeColor(spec.Color), WidthPt: spec.LineWidth}
		line.SetOffset(x, y)
		line.SetExtent(cx, cy)
		slide.AddShape(line)
		return nil
	default:
		return fmt.Errorf("unknown shape type %q", kind)
	}
}

func applyFill(ts *pptx.TextShape, spec *ShapeSpec) {
	if spec.Fill != "" {
		ts.Fill = &pptx.Fill{Color: normalizeColor(spec.Fill)}
	}
	if spec.Border != nil {
		ts.Border = &pptx.Border{Color: normalizeColor(spec.Border.Color), WidthPt: spec.Border.Width}
	}
}

func applyText(ts *pptx.TextShape, spec *ShapeSpec) error {
	if spec.WordWrap != nil {
		ts.WordWrap = *spec.WordWrap
	}
	if a, ok := anchors[spec.VAlign]; ok {
		ts.Anchor = a
	}
	if err := applyMargins(ts, spec.Margin); err != nil {
		return err
	}

	paragraphs := spec.Paragraphs
	if len(paragraphs) == 0 && spec.Text != "" {
		paragraphs = []ParagraphSpec{{
			Text:      spec.Text,
			FontName:  spec.FontName,
			FontSize:  spec.FontSize,
			Bold:      spec.Bold,
			Italic:    spec.Italic,
			Alignment: spec.Alignment,
			Color:     spec.Color,
		}}
	}
	for _, ps := range paragraphs {
		ts.Paragraphs = append(ts.Paragraphs, buildParagraph(&ps))
	}
	return nil
}

// applyMargins accepts either a single number (uniform inches) or a
// [top, right, bottom, left] quadruple.
func applyMargins(ts *pptx.TextShape, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var uniform float64
	if err := json.Unmarshal(raw, &uniform); err == nil {
		m := pptx.Inch(uniform)
		ts.Margins = pptx.Insets{Left: m, Top: m, Right: m, Bottom: m, Set: true}
		return nil
	}
	var quad [4]float64
	if err := json.Unmarshal(raw, &quad); err == nil {
		ts.Margins = pptx.Insets{
			Top:    pptx.Inch(quad[0]),
			Right:  pptx.Inch(quad[1]),
			Bottom: pptx.Inch(quad[2]),
			Left:   pptx.Inch(quad[3]),
			Set:    true,
		}
		return nil
	}
	return fmt.Errorf("margin must be a number or a [top,right,bottom,left] array")
}

func buildParagraph(ps *ParagraphSpec) *pptx.Paragraph {
	para := &pptx.Paragraph{
		Alignment:   alignments[ps.Alignment],
		SpaceBefore: ps.SpaceBefore,
		SpaceAfter:  ps.SpaceAfter,
	}
	if ps.LineSpacing > 0 {
		para.LineSpacing = &pptx.LineSpacing{Points: ps.LineSpacing}
	}
	if ps.Bullet {
		para.Level = ps.Level
		char := ps.BulletChar
		if char == "" {
			char = "•"
		}
		para.Bullet = &pptx.Bullet{Char: char}
	}
	para.Runs = []*pptx.TextRun{{
		Text: ps.Text,
		Font: pptx.Font{
			Name:      ps.FontName,
			Size:      ps.FontSize,
			Bold:      ps.Bold,
			Italic:    ps.Italic,
			Underline: ps.Underline,
			Color:     normalizeColor(ps.Color),
		},
	}}
	return para
}

func specOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func normalizeColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}

func imageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	default:
		return "png"
	}
}
