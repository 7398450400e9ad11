package inventory

import (
	"strings"

	"golang.org/x/image/font"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

const (
	// renderDPI is the pixel density all measurements assume.
	renderDPI = 96.0

	// defaultFontSize is the last-resort body size in points when
	// neither the paragraph nor the master chain declares one.
	defaultFontSize = 14.0

	// frameOverflowTolerance is how far, in inches, wrapped text may
	// exceed the usable frame height before it counts as overflow.
	frameOverflowTolerance = 0.05

	// slideOverflowTolerance absorbs rounding slop at the canvas edge.
	slideOverflowTolerance = 0.01

	// Default text-frame margins, applied when the shape does not
	// declare insets.
	defaultMarginTB = 0.05
	defaultMarginLR = 0.1
)

// Estimator approximates wrapped text height with real font metrics.
// It is a heuristic, not a rendering guarantee: substituted fonts bound
// the error.
type Estimator struct {
	Fonts *pptx.FontCache
}

// NewEstimator builds an estimator over the host's font directories.
func NewEstimator() *Estimator {
	return &Estimator{Fonts: pptx.NewFontCache()}
}

// FrameOverflow estimates how far, in inches, the shape's wrapped text
// extends past its usable height. ok is false when the text fits
// within tolerance.
func (e *Estimator) FrameOverflow(ts *pptx.TextShape, styles pptx.MasterStyles) (float64, bool) {
	widthEMU, heightEMU := ts.Extent()
	if widthEMU <= 0 || heightEMU <= 0 {
		return 0, false
	}

	mLeft, mTop, mRight, mBottom := frameMargins(ts)
	usableW := pptx.EMUToPixels(widthEMU, renderDPI) - (mLeft+mRight)*renderDPI
	usableH := pptx.EMUToPixels(heightEMU, renderDPI) - (mTop+mBottom)*renderDPI
	if usableW <= 0 || usableH <= 0 {
		return 0, false
	}

	total := 0.0
	first := true
	for _, para := range ts.Paragraphs {
		text := para.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		size := e.paragraphFontSize(para, ts, styles)
		name := ""
		if run := para.FirstRun(); run != nil {
			name = run.Font.Name
		}
		face := e.Fonts.MeasureFace(name, size, renderDPI)

		lines := 0
		for _, logical := range strings.Split(text, "\n") {
			lines += wrapLineCount(face, logical, usableW, ts.WordWrap)
		}

		lineHeight := size * renderDPI / 72
		if ls := para.LineSpacing; ls != nil {
			if ls.Points > 0 {
				lineHeight = ls.Points * renderDPI / 72
			} else if ls.Multiple > 0 {
				lineHeight = ls.Multiple * size * renderDPI / 72
			}
		}
		total += float64(lines) * lineHeight
		if para.SpaceBefore != nil && !first {
			total += *para.SpaceBefore * renderDPI / 72
		}
		if para.SpaceAfter != nil {
			total += *para.SpaceAfter * renderDPI / 72
		}
		first = false
	}

	excess := total - usableH
	if excess <= frameOverflowTolerance*renderDPI {
		return 0, false
	}
	return round2(excess / renderDPI), true
}

// paragraphFontSize resolves the effective size: the paragraph's first
// run, else the shape's layout-inherited default, else the master style
// matched to the shape's placeholder slot, else the hard default.
func (e *Estimator) paragraphFontSize(para *pptx.Paragraph, ts *pptx.TextShape, styles pptx.MasterStyles) float64 {
	if run := para.FirstRun(); run != nil && run.Font.Size > 0 {
		return run.Font.Size
	}
	if ts.DefaultFontSize > 0 {
		return ts.DefaultFontSize
	}
	if ph := ts.Placeholder; ph != nil {
		if sz := styles.DefaultFontSize(ph.Type); sz > 0 {
			return sz
		}
	} else if styles.BodySize > 0 {
		return styles.BodySize
	}
	return defaultFontSize
}

// wrapLineCount greedily wraps one logical line at the usable pixel
// width and returns how many rendered lines it occupies. A line always
// occupies at least one row, even when empty. With wrapping disabled
// the logical line is a single row regardless of width.
func wrapLineCount(face font.Face, line string, usableW float64, wrap bool) int {
	if !wrap || strings.TrimSpace(line) == "" {
		return 1
	}
	words := strings.Fields(line)
	rows := 1
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if pptx.MeasureString(face, candidate) <= usableW {
			current = candidate
			continue
		}
		if current == "" {
			// A single word wider than the frame fills its row; the
			// next word will be forced onto a new one.
			current = word
			continue
		}
		rows++
		current = word
	}
	return rows
}

func frameMargins(ts *pptx.TextShape) (left, top, right, bottom float64) {
	if ts.Margins.Set {
		return pptx.EMUToInch(ts.Margins.Left), pptx.EMUToInch(ts.Margins.Top),
			pptx.EMUToInch(ts.Margins.Right), pptx.EMUToInch(ts.Margins.Bottom)
	}
	return defaultMarginLR, defaultMarginTB, defaultMarginLR, defaultMarginTB
}

// slideOverflow reports how far a shape's box extends past the slide
// canvas on the right and bottom edges, beyond tolerance, in inches.
func slideOverflow(left, top, width, height, slideW, slideH float64) *SlideOverflow {
	var so SlideOverflow
	if excess := left + width - slideW; excess > slideOverflowTolerance {
		so.OverflowRight = round2(excess)
	}
	if excess := top + height - slideH; excess > slideOverflowTolerance {
		so.OverflowBottom = round2(excess)
	}
	if so.OverflowRight == 0 && so.OverflowBottom == 0 {
		return nil
	}
	return &so
}
