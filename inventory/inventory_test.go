package inventory

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// testEstimator measures with the built-in bitmap face only, so results
// do not depend on the host's installed fonts.
func testEstimator() *Estimator {
	return &Estimator{Fonts: pptx.NewFontCacheDirs(nil)}
}

func addText(slide *pptx.Slide, text string, left, top, width, height float64) *pptx.TextShape {
	ts := slide.AddTextBox(pptx.Inch(left), pptx.Inch(top), pptx.Inch(width), pptx.Inch(height))
	ts.Paragraphs = []*pptx.Paragraph{{
		Runs: []*pptx.TextRun{{Text: text}},
	}}
	return ts
}

func TestEmptyTextShapesExcluded(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "", 1, 1, 2, 1)
	addText(slide, "   \n\t", 1, 3, 2, 1)

	inv := testEstimator().Extract(pres, Options{})
	assert.Empty(t, inv.Slides, "whitespace-only shapes must not be inventoried")
}

func TestSlideWithoutContentOmitted(t *testing.T) {
	pres := pptx.New()
	pres.AddSlide()
	slide := pres.AddSlide()
	addText(slide, "hello", 1, 1, 2, 1)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	assert.Equal(t, "slide-1", inv.Slides[0].ID)
}

func TestSlideNumberAndNumericFooterExcluded(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()

	num := addText(slide, "7", 12, 7, 1, 0.4)
	num.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderSlideNumber}

	footer := addText(slide, "42", 5, 7, 2, 0.4)
	footer.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderFooter}

	namedFooter := addText(slide, "Quarterly Review", 1, 7, 3, 0.4)
	namedFooter.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderFooter}

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	shapes := inv.Slides[0].Shapes
	require.Len(t, shapes, 1)
	assert.Equal(t, "Quarterly Review", shapes[0].Paragraphs[0].Text)
}

func TestShapeIDsFollowReadingOrder(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	// Added out of reading order on purpose.
	addText(slide, "bottom", 1, 5, 2, 1)
	addText(slide, "top-right", 6, 1, 2, 1)
	addText(slide, "top-left", 1, 1.2, 2, 1)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	shapes := inv.Slides[0].Shapes
	require.Len(t, shapes, 3)

	assert.Equal(t, "shape-0", shapes[0].ID)
	assert.Equal(t, "top-left", shapes[0].Paragraphs[0].Text, "same row sorts left to right")
	assert.Equal(t, "top-right", shapes[1].Paragraphs[0].Text)
	assert.Equal(t, "bottom", shapes[2].Paragraphs[0].Text)

	seen := map[string]bool{}
	for _, rec := range shapes {
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestGroupOffsetsAccumulate(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()

	inner := &pptx.TextShape{WordWrap: true}
	inner.SetOffset(pptx.Inch(0.5), pptx.Inch(0.5))
	inner.SetExtent(pptx.Inch(2), pptx.Inch(1))
	inner.Paragraphs = []*pptx.Paragraph{{Runs: []*pptx.TextRun{{Text: "nested"}}}}

	group := &pptx.GroupShape{Shapes: []pptx.Shape{inner}}
	group.SetOffset(pptx.Inch(1), pptx.Inch(2))
	group.SetExtent(pptx.Inch(4), pptx.Inch(3))
	slide.AddShape(group)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	shapes := inv.Slides[0].Shapes
	require.Len(t, shapes, 1, "the group itself is never inventoried")
	assert.InDelta(t, 1.5, shapes[0].Left, 0.001)
	assert.InDelta(t, 2.5, shapes[0].Top, 0.001)
}

func TestGroupChildOffsetRebased(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()

	inner := &pptx.TextShape{WordWrap: true}
	inner.SetOffset(pptx.Inch(3), pptx.Inch(3))
	inner.SetExtent(pptx.Inch(1), pptx.Inch(1))
	inner.Paragraphs = []*pptx.Paragraph{{Runs: []*pptx.TextRun{{Text: "rebased"}}}}

	group := &pptx.GroupShape{
		Shapes:       []pptx.Shape{inner},
		ChildOffsetX: pptx.Inch(2),
		ChildOffsetY: pptx.Inch(2),
	}
	group.SetOffset(pptx.Inch(1), pptx.Inch(1))
	slide.AddShape(group)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	rec := inv.Slides[0].Shapes[0]
	assert.InDelta(t, 2.0, rec.Left, 0.001)
	assert.InDelta(t, 2.0, rec.Top, 0.001)
}

func TestOverlapSymmetricWithKnownArea(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "a", 0, 0, 2, 2)
	addText(slide, "b", 1, 1, 2, 2)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	shapes := inv.Slides[0].Shapes
	require.Len(t, shapes, 2)

	require.NotNil(t, shapes[0].Overlap)
	require.NotNil(t, shapes[1].Overlap)
	a0, ok := shapes[0].Overlap.OverlappingShapes.Get("shape-1")
	require.True(t, ok)
	a1, ok := shapes[1].Overlap.OverlappingShapes.Get("shape-0")
	require.True(t, ok)
	assert.Equal(t, 1.00, a0)
	assert.Equal(t, a0, a1, "overlap must be symmetric")
}

func TestHairlineContactIsNotOverlap(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "a", 0, 0, 2, 2)
	addText(slide, "b", 1.97, 0, 2, 2)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	for _, rec := range inv.Slides[0].Shapes {
		assert.Nil(t, rec.Overlap, "0.03in of contact is within tolerance")
	}
}

func TestSlideOverflowRight(t *testing.T) {
	pres := pptx.New()
	pres.SetSlideSize(pptx.Inch(10), pptx.Inch(7.5))
	slide := pres.AddSlide()
	addText(slide, "off canvas", 9, 1, 2.5, 1)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	rec := inv.Slides[0].Shapes[0]
	require.NotNil(t, rec.Overflow)
	require.NotNil(t, rec.Overflow.Slide)
	assert.InDelta(t, 1.5, rec.Overflow.Slide.OverflowRight, 0.01)
	assert.Zero(t, rec.Overflow.Slide.OverflowBottom)
}

func TestFrameOverflowOnTinyBox(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	ts := addText(slide, strings.Repeat("overflowing words ", 12), 1, 1, 1, 0.3)
	ts.Paragraphs[0].Runs[0].Font.Size = 24

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	rec := inv.Slides[0].Shapes[0]
	require.NotNil(t, rec.Overflow)
	require.NotNil(t, rec.Overflow.Frame)
	assert.Greater(t, rec.Overflow.Frame.OverflowBottom, 0.0)
}

func TestManualBulletWarning(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "• typed bullet", 1, 1, 4, 1)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	assert.Equal(t, []string{"manual_bullet_symbol"}, inv.Slides[0].Shapes[0].Warnings)
}

func TestIssuesOnlyIsStrictSubset(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "clean", 1, 1, 3, 1)
	addText(slide, "overlapped", 1, 3, 3, 1)
	addText(slide, "also overlapped", 2, 3.2, 3, 1)

	e := testEstimator()
	full := e.Extract(pres, Options{})
	issues := e.Extract(pres, Options{IssuesOnly: true})

	require.Len(t, full.Slides, 1)
	require.Len(t, issues.Slides, 1)
	assert.Less(t, len(issues.Slides[0].Shapes), len(full.Slides[0].Shapes))
	for _, rec := range issues.Slides[0].Shapes {
		assert.True(t, rec.HasIssues())
	}
}

func TestExtractionIsByteIdenticalAcrossRuns(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "alpha", 1, 1, 3, 1)
	addText(slide, "beta", 5, 1, 3, 1)
	addText(slide, "gamma overlaps beta", 5.5, 1.2, 3, 1)

	e := testEstimator()
	first, err := json.Marshal(e.Extract(pres, Options{}))
	require.NoError(t, err)
	second, err := json.Marshal(e.Extract(pres, Options{}))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "repeated extraction must serialize identically")
}

func TestJSONKeysInNumericOrder(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	for i := 0; i < 11; i++ {
		addText(slide, "row", 1, 0.2+float64(i)*0.7, 2, 0.4)
	}

	data, err := json.Marshal(testEstimator().Extract(pres, Options{}))
	require.NoError(t, err)
	s := string(data)
	assert.Less(t, strings.Index(s, `"shape-2"`), strings.Index(s, `"shape-10"`),
		"numeric id order, not lexicographic")
}

func TestParagraphStyleFromFirstRun(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	ts := addText(slide, "", 1, 1, 4, 1)
	sz := 20.0
	ts.Paragraphs = []*pptx.Paragraph{{
		Alignment: "ctr",
		Bullet:    &pptx.Bullet{Char: "-"},
		Runs: []*pptx.TextRun{
			{Text: "styled ", Font: pptx.Font{Name: "Arial", Size: sz, Bold: true, Color: "ff0000"}},
			{Text: "tail", Font: pptx.Font{Size: 8}},
		},
	}}

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	para := inv.Slides[0].Shapes[0].Paragraphs[0]
	assert.Equal(t, "styled tail", para.Text)
	assert.Equal(t, "CENTER", para.Alignment)
	assert.True(t, para.Bullet)
	assert.Equal(t, "Arial", para.FontName)
	require.NotNil(t, para.FontSize)
	assert.Equal(t, 20.0, *para.FontSize)
	assert.True(t, para.Bold)
	assert.Equal(t, "FF0000", para.Color)
}

func TestDefaultFontSizeFromMasterStyles(t *testing.T) {
	pres := pptx.New()
	pres.Styles = pptx.MasterStyles{TitleSize: 44, BodySize: 18}
	slide := pres.AddSlide()

	title := addText(slide, "Heading", 1, 0.5, 8, 1)
	title.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderTitle}
	body := addText(slide, "Body text", 1, 2, 8, 2)
	body.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderBody, Index: 1}

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	shapes := inv.Slides[0].Shapes
	require.Len(t, shapes, 2)
	require.NotNil(t, shapes[0].DefaultFontSize)
	assert.Equal(t, 44.0, *shapes[0].DefaultFontSize)
	require.NotNil(t, shapes[1].DefaultFontSize)
	assert.Equal(t, 18.0, *shapes[1].DefaultFontSize)
}

func TestDefaultFontSizePrefersLayoutOverMaster(t *testing.T) {
	pres := pptx.New()
	pres.Styles = pptx.MasterStyles{TitleSize: 44, BodySize: 18}
	slide := pres.AddSlide()

	title := addText(slide, "Heading", 1, 0.5, 8, 1)
	title.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderTitle}
	title.DefaultFontSize = 30

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	rec := inv.Slides[0].Shapes[0]
	require.NotNil(t, rec.DefaultFontSize)
	assert.Equal(t, 30.0, *rec.DefaultFontSize,
		"layout placeholder size wins over the master style")
}

func TestManualBulletNeedsTrailingSpace(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	addText(slide, "●", 1, 1, 4, 1)
	addText(slide, "● item", 1, 3, 4, 1)

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	require.Len(t, inv.Slides[0].Shapes, 2)
	assert.Empty(t, inv.Slides[0].Shapes[0].Warnings,
		"a lone glyph is content, not a typed bullet")
	assert.Equal(t, []string{"manual_bullet_symbol"}, inv.Slides[0].Shapes[1].Warnings)
}

func TestBulletLevelZeroIsRecorded(t *testing.T) {
	pres := pptx.New()
	slide := pres.AddSlide()
	ts := addText(slide, "", 1, 1, 4, 2)
	ts.Paragraphs = []*pptx.Paragraph{
		{Bullet: &pptx.Bullet{Char: "-"}, Runs: []*pptx.TextRun{{Text: "top"}}},
		{Bullet: &pptx.Bullet{Char: "-"}, Level: 1, Runs: []*pptx.TextRun{{Text: "nested"}}},
		{Runs: []*pptx.TextRun{{Text: "plain"}}},
	}

	inv := testEstimator().Extract(pres, Options{})
	require.Len(t, inv.Slides, 1)
	paras := inv.Slides[0].Shapes[0].Paragraphs
	require.Len(t, paras, 3)

	require.NotNil(t, paras[0].Level)
	assert.Equal(t, 0, *paras[0].Level)
	require.NotNil(t, paras[1].Level)
	assert.Equal(t, 1, *paras[1].Level)
	assert.Nil(t, paras[2].Level, "no level without a bullet")

	data, err := json.Marshal(paras[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":0`)
}
