package rearrange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

func deck(texts ...string) *pptx.Presentation {
	pres := pptx.New()
	for _, text := range texts {
		slide := pres.AddSlide()
		ts := slide.AddTextBox(pptx.Inch(1), pptx.Inch(1), pptx.Inch(4), pptx.Inch(1))
		ts.Paragraphs = []*pptx.Paragraph{{Runs: []*pptx.TextRun{{Text: text}}}}
	}
	return pres
}

func slideTexts(pres *pptx.Presentation) []string {
	out := make([]string, 0, pres.SlideCount())
	for _, s := range pres.Slides() {
		out = append(out, s.Text())
	}
	return out
}

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence(" 0, 2,1 ")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, seq)

	_, err = ParseSequence("0,,1")
	assert.Error(t, err)
	_, err = ParseSequence("0,two")
	assert.Error(t, err)
	_, err = ParseSequence("-1")
	assert.Error(t, err)
}

func TestReorder(t *testing.T) {
	pres := deck("a", "b", "c")
	require.NoError(t, Apply(pres, []int{2, 0, 1}))
	assert.Equal(t, []string{"c", "a", "b"}, slideTexts(pres))
}

func TestDeleteByOmission(t *testing.T) {
	pres := deck("a", "b", "c")
	require.NoError(t, Apply(pres, []int{0, 2}))
	assert.Equal(t, []string{"a", "c"}, slideTexts(pres))
}

func TestDuplicate(t *testing.T) {
	pres := deck("a", "b")
	require.NoError(t, Apply(pres, []int{0, 0, 1}))
	assert.Equal(t, []string{"a", "a", "b"}, slideTexts(pres))
}

func TestComplexMultiDuplicateReordering(t *testing.T) {
	pres := deck("a", "b", "c")
	require.NoError(t, Apply(pres, []int{2, 0, 2, 1, 0}))
	assert.Equal(t, []string{"c", "a", "c", "b", "a"}, slideTexts(pres))
}

func TestDuplicatesAreIndependent(t *testing.T) {
	pres := deck("a")
	require.NoError(t, Apply(pres, []int{0, 0}))

	first := pres.Slides()[0].Shapes[0].(*pptx.TextShape)
	second := pres.Slides()[1].Shapes[0].(*pptx.TextShape)
	first.Paragraphs[0].Runs[0].Text = "edited"

	assert.Equal(t, "edited", first.Text())
	assert.Equal(t, "a", second.Text(), "editing one duplicate must not touch the other")
}

func TestRejectsOutOfRange(t *testing.T) {
	pres := deck("a", "b")
	assert.Error(t, Apply(pres, []int{0, 2}))
	assert.Error(t, Apply(pres, nil))
}
