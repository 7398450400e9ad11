package replace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

func deckWithText(texts ...string) *pptx.Presentation {
	pres := pptx.New()
	slide := pres.AddSlide()
	for i, text := range texts {
		ts := slide.AddTextBox(pptx.Inch(1), pptx.Inch(0.5+float64(i)), pptx.Inch(4), pptx.Inch(0.6))
		ts.Paragraphs = []*pptx.Paragraph{{Runs: []*pptx.TextRun{{Text: text}}}}
	}
	return pres
}

func TestValidateRejectsBadIDs(t *testing.T) {
	pres := deckWithText("one")
	problems := Validate(pres, Spec{
		"slide-x": {"shape-0": nil},
		"slide-9": {"shape-0": nil},
		"slide-0": {"shape!": nil, "shape-7": nil},
	})
	require.Len(t, problems, 4)
	assert.Contains(t, problems[0], "slide-0/shape!")
	assert.Contains(t, problems[1], "slide-0/shape-7")
	assert.Contains(t, problems[2], "slide-9")
	assert.Contains(t, problems[3], "slide-x")
}

func TestApplyReplacesSpecifiedShape(t *testing.T) {
	pres := deckWithText("old title", "old body")
	sz := 30.0
	err := Apply(pres, Spec{
		"slide-0": {
			"shape-0": {{Text: "new title", FontSize: &sz, Alignment: "CENTER"}},
		},
	}, false)
	require.NoError(t, err)

	slide := pres.Slides()[0]
	first := slide.Shapes[0].(*pptx.TextShape)
	assert.Equal(t, "new title", first.Text())
	assert.Equal(t, "ctr", first.Paragraphs[0].Alignment)
	assert.Equal(t, 30.0, first.Paragraphs[0].Runs[0].Font.Size)

	second := slide.Shapes[1].(*pptx.TextShape)
	assert.Equal(t, "old body", second.Text(), "unspecified shape untouched when clearing is off")
}

func TestApplyClearsUnspecifiedShapes(t *testing.T) {
	pres := deckWithText("keep me", "wipe me")
	err := Apply(pres, Spec{
		"slide-0": {"shape-0": {{Text: "kept"}}},
	}, true)
	require.NoError(t, err)

	slide := pres.Slides()[0]
	assert.Equal(t, "kept", slide.Shapes[0].(*pptx.TextShape).Text())
	assert.Equal(t, "", slide.Shapes[1].(*pptx.TextShape).Text())
}

func TestApplyMultipleParagraphsWithBullets(t *testing.T) {
	pres := deckWithText("list")
	err := Apply(pres, Spec{
		"slide-0": {"shape-0": {
			{Text: "heading"},
			{Text: "first point", Bullet: true, Level: 1},
			{Text: "second point", Bullet: true, Level: 1},
		}},
	}, true)
	require.NoError(t, err)

	ts := pres.Slides()[0].Shapes[0].(*pptx.TextShape)
	require.Len(t, ts.Paragraphs, 3)
	assert.Nil(t, ts.Paragraphs[0].Bullet)
	require.NotNil(t, ts.Paragraphs[1].Bullet)
	assert.Equal(t, "•", ts.Paragraphs[1].Bullet.Char)
	assert.Equal(t, 1, ts.Paragraphs[1].Level)
}

func TestDefaultFontSizeInheritedForPlaceholders(t *testing.T) {
	pres := pptx.New()
	pres.Styles = pptx.MasterStyles{TitleSize: 44, BodySize: 18}
	slide := pres.AddSlide()
	title := slide.AddTextBox(pptx.Inch(1), pptx.Inch(0.5), pptx.Inch(8), pptx.Inch(1))
	title.Placeholder = &pptx.PlaceholderRef{Type: pptx.PlaceholderTitle}
	title.Paragraphs = []*pptx.Paragraph{{Runs: []*pptx.TextRun{{Text: "Old"}}}}

	err := Apply(pres, Spec{
		"slide-0": {"shape-0": {{Text: "New title"}}},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 44.0, title.Paragraphs[0].Runs[0].Font.Size,
		"omitted font_size inherits the master default for the slot")
}

func TestApplyFailsOnUnknownShape(t *testing.T) {
	pres := deckWithText("only one")
	err := Apply(pres, Spec{
		"slide-0": {"shape-3": {{Text: "nope"}}},
	}, true)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestSchemaRejectsLooseKeys(t *testing.T) {
	err := validateSpecJSON([]byte(`{"slide-0": {"shape-0": [{"text": "ok"}]}, "junk": {}}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	require.NoError(t, validateSpecJSON([]byte(`{"slide-0": {"shape-0": [{"text": "ok"}]}}`)))
}
