// Package replace rewrites shape text from a JSON replacement
// specification keyed by the slide and shape ids a prior inventory
// extraction handed out. Shapes the spec does not mention are cleared
// unless the caller opts out, so a replacement pass yields a deck with
// exactly the requested text.
package replace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shjanjua/pptx-mcp-server/inventory"
	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// Spec maps slide-id to shape-id to replacement paragraphs.
type Spec map[string]map[string][]ParagraphSpec

// ParagraphSpec describes one replacement paragraph. Alignment uses
// the uppercase names inventory extraction emits. Nil style fields
// leave the corresponding attribute unset.
type ParagraphSpec struct {
	Text        string   `json:"text"`
	Alignment   string   `json:"alignment,omitempty"`
	Bullet      bool     `json:"bullet,omitempty"`
	Level       int      `json:"level,omitempty"`
	SpaceBefore *float64 `json:"space_before,omitempty"`
	SpaceAfter  *float64 `json:"space_after,omitempty"`
	LineSpacing *float64 `json:"line_spacing,omitempty"`
	FontName    string   `json:"font_name,omitempty"`
	FontSize    *float64 `json:"font_size,omitempty"`
	Bold        *bool    `json:"bold,omitempty"`
	Italic      *bool    `json:"italic,omitempty"`
	Underline   *bool    `json:"underline,omitempty"`
	Color       string   `json:"color,omitempty"`
}

var (
	slideIDPattern = regexp.MustCompile(`^slide-\d+$`)
	shapeIDPattern = regexp.MustCompile(`^shape-\d+$`)
)

var alignments = map[string]string{
	"LEFT":    "l",
	"CENTER":  "ctr",
	"RIGHT":   "r",
	"JUSTIFY": "just",
}

// ValidationError carries every problem found in a replacement spec.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("replacement spec invalid: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the spec's ids against the deck: id formats, slide
// ranges, and shape existence under the same reading-order ids
// extraction assigns. It returns every problem, not just the first.
func Validate(pres *pptx.Presentation, spec Spec) []string {
	var problems []string
	bySlide := shapesBySlide(pres)

	slideIDs := make([]string, 0, len(spec))
	for id := range spec {
		slideIDs = append(slideIDs, id)
	}
	sort.Strings(slideIDs)

	for _, slideID := range slideIDs {
		if !slideIDPattern.MatchString(slideID) {
			problems = append(problems, fmt.Sprintf("invalid slide id format: %s", slideID))
			continue
		}
		idx := idNumber(slideID)
		if idx >= pres.SlideCount() {
			problems = append(problems, fmt.Sprintf("slide index out of range: %s (presentation has %d slides)", slideID, pres.SlideCount()))
			continue
		}
		slideShapes := bySlide[slideID]

		shapeIDs := make([]string, 0, len(spec[slideID]))
		for id := range spec[slideID] {
			shapeIDs = append(shapeIDs, id)
		}
		sort.Strings(shapeIDs)

		for _, shapeID := range shapeIDs {
			if !shapeIDPattern.MatchString(shapeID) {
				problems = append(problems, fmt.Sprintf("%s/%s: invalid shape id format", slideID, shapeID))
				continue
			}
			if _, ok := slideShapes[shapeID]; !ok {
				problems = append(problems, fmt.Sprintf("%s/%s: shape not found", slideID, shapeID))
			}
		}
	}
	return problems
}

// Apply rewrites the deck in place. clearUnspecified wipes the text of
// qualifying shapes the spec does not mention.
func Apply(pres *pptx.Presentation, spec Spec, clearUnspecified bool) error {
	if problems := Validate(pres, spec); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	for _, ss := range inventory.ShapesInReadingOrder(pres) {
		slideSpec := spec[ss.SlideID]
		for _, shapeID := range ss.Order {
			ts := ss.Shapes[shapeID]
			paras, mentioned := slideSpec[shapeID]
			if !mentioned {
				if clearUnspecified {
					clearTextFrame(ts)
				}
				continue
			}
			applyToShape(ts, paras, defaultFontSize(pres, ts))
		}
	}
	return nil
}

// ApplyFile opens a deck, applies replacements decoded from raw JSON
// and saves the result, creating parent directories as needed.
func ApplyFile(inputPath string, rawSpec []byte, outputPath string, clearUnspecified bool) error {
	if err := validateSpecJSON(rawSpec); err != nil {
		return err
	}
	var spec Spec
	if err := json.Unmarshal(rawSpec, &spec); err != nil {
		return fmt.Errorf("decode replacement spec: %w", err)
	}
	pres, err := pptx.Open(inputPath)
	if err != nil {
		return fmt.Errorf("apply replacements: %w", err)
	}
	if err := Apply(pres, spec, clearUnspecified); err != nil {
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return pres.Save(outputPath)
}

// clearTextFrame keeps a single empty paragraph, mirroring what a user
// would get deleting all text by hand.
func clearTextFrame(ts *pptx.TextShape) {
	ts.Paragraphs = []*pptx.Paragraph{{}}
}

func applyToShape(ts *pptx.TextShape, paras []ParagraphSpec, defaultSize float64) {
	ts.Paragraphs = ts.Paragraphs[:0]
	for _, ps := range paras {
		ts.Paragraphs = append(ts.Paragraphs, buildParagraph(&ps, defaultSize))
	}
	if len(ts.Paragraphs) == 0 {
		clearTextFrame(ts)
	}
}

func buildParagraph(ps *ParagraphSpec, defaultSize float64) *pptx.Paragraph {
	para := &pptx.Paragraph{
		Alignment:   alignments[ps.Alignment],
		SpaceBefore: ps.SpaceBefore,
		SpaceAfter:  ps.SpaceAfter,
	}
	if ps.LineSpacing != nil {
		para.LineSpacing = &pptx.LineSpacing{Points: *ps.LineSpacing}
	}
	if ps.Bullet {
		para.Level = ps.Level
		para.Bullet = &pptx.Bullet{Char: "•"}
	}

	font := pptx.Font{
		Name:  ps.FontName,
		Color: strings.ToUpper(strings.TrimPrefix(ps.Color, "#")),
	}
	switch {
	case ps.FontSize != nil:
		font.Size = *ps.FontSize
	case defaultSize > 0:
		// Inherit the layout/master default so cleared formatting does
		// not snap to the renderer fallback.
		font.Size = defaultSize
	}
	if ps.Bold != nil {
		font.Bold = *ps.Bold
	}
	if ps.Italic != nil {
		font.Italic = *ps.Italic
	}
	if ps.Underline != nil {
		font.Underline = *ps.Underline
	}
	para.Runs = []*pptx.TextRun{{Text: ps.Text, Font: font}}
	return para
}

func defaultFontSize(pres *pptx.Presentation, ts *pptx.TextShape) float64 {
	if ts.DefaultFontSize > 0 {
		return ts.DefaultFontSize
	}
	if ts.Placeholder == nil {
		return 0
	}
	return pres.Styles.DefaultFontSize(ts.Placeholder.Type)
}

func shapesBySlide(pres *pptx.Presentation) map[string]map[string]*pptx.TextShape {
	out := make(map[string]map[string]*pptx.TextShape)
	for _, ss := range inventory.ShapesInReadingOrder(pres) {
		out[ss.SlideID] = ss.Shapes
	}
	return out
}

func idNumber(id string) int {
	n, _ := strconv.Atoi(id[strings.LastIndexByte(id, '-')+1:])
	return n
}
