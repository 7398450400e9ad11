package inventory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// Options controls extraction.
type Options struct {
	// IssuesOnly keeps only shapes with overflow, overlap or warnings.
	IssuesOnly bool
}

// manualBulletGlyphs are glyphs that signal a hand-typed bullet instead
// of structured bullet formatting.
var manualBulletGlyphs = []string{"•", "●", "○"}

const warningManualBullet = "manual_bullet_symbol"

// Extract builds the inventory for an already opened presentation.
func Extract(pres *pptx.Presentation, opts Options) *Inventory {
	return NewEstimator().Extract(pres, opts)
}

// ExtractFile opens a .pptx file and extracts its inventory. A file
// that cannot be opened fails the whole call; per-shape estimation
// failures degrade to records without enrichment.
func ExtractFile(filename string, opts Options) (*Inventory, error) {
	pres, err := pptx.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("extract inventory: %w", err)
	}
	return Extract(pres, opts), nil
}

// Extract assembles the inventory: resolve absolute positions, filter,
// build records, sort into reading order, assign positional ids, run
// overlap detection, then apply the issues filter. Slides that end up
// with no records are omitted.
func (e *Estimator) Extract(pres *pptx.Presentation, opts Options) *Inventory {
	slideW, slideH := pres.SlideSize()
	slideWIn := pptx.EMUToInch(slideW)
	slideHIn := pptx.EMUToInch(slideH)

	inv := &Inventory{}
	for i, slide := range pres.Slides() {
		placed := resolveShapes(slide.Shapes, 0, 0)
		if len(placed) == 0 {
			continue
		}

		records := make([]*ShapeRecord, 0, len(placed))
		for _, ps := range placed {
			records = append(records, e.buildRecord(ps, pres.Styles, slideWIn, slideHIn))
		}
		records = sortReadingOrder(records)
		for n, rec := range records {
			rec.ID = fmt.Sprintf("shape-%d", n)
		}
		if len(records) >= 2 {
			detectOverlaps(records)
		}

		if opts.IssuesOnly {
			kept := records[:0]
			for _, rec := range records {
				if rec.HasIssues() {
					kept = append(kept, rec)
				}
			}
			records = kept
		}
		if len(records) == 0 {
			continue
		}
		inv.Slides = append(inv.Slides, &SlideEntry{
			ID:     fmt.Sprintf("slide-%d", i),
			Shapes: records,
		})
	}
	return inv
}

// buildRecord derives the inventoried view of one placed shape.
// Overflow estimation is best-effort: a panic while measuring one
// shape leaves that shape's enrichment fields absent and moves on.
func (e *Estimator) buildRecord(ps placedShape, styles pptx.MasterStyles, slideW, slideH float64) *ShapeRecord {
	ts := ps.shape
	cx, cy := ts.Extent()
	widthIn := pptx.EMUToInch(cx)
	heightIn := pptx.EMUToInch(cy)

	rec := &ShapeRecord{
		Left:   round2(ps.left),
		Top:    round2(ps.top),
		Width:  round2(widthIn),
		Height: round2(heightIn),
	}
	if ph := ts.Placeholder; ph != nil {
		rec.PlaceholderType = string(ph.Type)
		sz := ts.DefaultFontSize
		if sz == 0 {
			sz = styles.DefaultFontSize(ph.Type)
		}
		if sz > 0 {
			rec.DefaultFontSize = &sz
		}
	}

	var overflow Overflow
	if amount, ok := e.safeFrameOverflow(ts, styles); ok {
		overflow.Frame = &FrameOverflow{OverflowBottom: amount}
	}
	overflow.Slide = slideOverflow(ps.left, ps.top, widthIn, heightIn, slideW, slideH)
	if overflow.Frame != nil || overflow.Slide != nil {
		rec.Overflow = &overflow
	}

	rec.Warnings = detectWarnings(ts)

	for _, para := range ts.Paragraphs {
		if strings.TrimSpace(para.Text()) == "" {
			continue
		}
		rec.Paragraphs = append(rec.Paragraphs, paragraphRecord(para))
	}
	return rec
}

// safeFrameOverflow shields record building from estimator panics so a
// single degenerate shape cannot abort the slide.
func (e *Estimator) safeFrameOverflow(ts *pptx.TextShape, styles pptx.MasterStyles) (amount float64, ok bool) {
	defer func() {
		if recover() != nil {
			amount, ok = 0, false
		}
	}()
	return e.FrameOverflow(ts, styles)
}

// detectWarnings flags hand-typed bullet glyphs, once per shape.
func detectWarnings(ts *pptx.TextShape) []string {
	for _, para := range ts.Paragraphs {
		text := strings.TrimSpace(para.Text())
		for _, glyph := range manualBulletGlyphs {
			if strings.HasPrefix(text, glyph+" ") {
				return []string{warningManualBullet}
			}
		}
	}
	return nil
}

// paragraphRecord collapses a paragraph to its first run's style.
func paragraphRecord(para *pptx.Paragraph) ParagraphRecord {
	pr := ParagraphRecord{Text: strings.TrimSpace(para.Text())}

	if bu := para.Bullet; bu != nil && !bu.None {
		pr.Bullet = true
		lvl := para.Level
		pr.Level = &lvl
	}
	switch para.Alignment {
	case "ctr":
		pr.Alignment = "CENTER"
	case "r":
		pr.Alignment = "RIGHT"
	case "just":
		pr.Alignment = "JUSTIFY"
	}
	pr.SpaceBefore = para.SpaceBefore
	pr.SpaceAfter = para.SpaceAfter

	if run := para.FirstRun(); run != nil {
		f := run.Font
		pr.FontName = f.Name
		if f.Size > 0 {
			v := f.Size
			pr.FontSize = &v
		}
		pr.Bold = f.Bold
		pr.Italic = f.Italic
		pr.Underline = f.Underline
		pr.Color = strings.ToUpper(f.Color)
		pr.ThemeColor = f.ThemeColor
	}
	if ls := para.LineSpacing; ls != nil {
		v := ls.Points
		if v == 0 {
			v = ls.Multiple
		}
		if v > 0 {
			pr.LineSpacing = &v
		}
	}
	return pr
}

// MarshalIndent renders the inventory as stable, human-readable JSON.
func (inv *Inventory) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(inv, "", "  ")
}
