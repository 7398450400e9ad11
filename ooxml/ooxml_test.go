package ooxml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shjanjua/pptx-mcp-server/compose"
	"github.com/shjanjua/pptx-mcp-server/pptx"
)

func buildDeck(t *testing.T) string {
	t.Helper()
	raw := []byte(`{"layout":"16:9","slides":[{"shapes":[{"type":"textbox","text":"Hello  world"}]}]}`)
	path := filepath.Join(t.TempDir(), "deck.pptx")
	_, err := compose.CreateFile(raw, path)
	require.NoError(t, err)
	return path
}

func TestDocumentType(t *testing.T) {
	ext, err := DocumentType("report.PPTX")
	require.NoError(t, err)
	assert.Equal(t, ".pptx", ext)

	_, err = DocumentType("notes.txt")
	assert.Error(t, err)
}

func TestUnpackPackRoundTrip(t *testing.T) {
	deck := buildDeck(t)
	unpacked := filepath.Join(t.TempDir(), "unpacked")

	res, err := Unpack(deck, unpacked)
	require.NoError(t, err)
	assert.Greater(t, res.FileCount, 5)
	assert.Greater(t, res.FormattedXML, 5)
	assert.Empty(t, res.RSIDSuggested)

	repacked := filepath.Join(t.TempDir(), "repacked.pptx")
	require.NoError(t, Pack(unpacked, repacked, PackOptions{}))

	pres, err := pptx.Open(repacked)
	require.NoError(t, err)
	require.Equal(t, 1, pres.SlideCount())
	slide, err := pres.Slide(0)
	require.NoError(t, err)
	assert.Contains(t, slide.Text(), "Hello  world")
}

func TestUnpackRejectsUnknownExtension(t *testing.T) {
	_, err := Unpack("document.zip", t.TempDir())
	assert.Error(t, err)
}

func TestPackRejectsMissingDirectory(t *testing.T) {
	err := Pack(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "out.pptx"), PackOptions{})
	assert.Error(t, err)
}

func TestPrettyPrintInlinesTextElements(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?><p:sld><a:p><a:t>  keep me  </a:t></a:p></p:sld>`)
	pretty := string(PrettyPrint(raw))
	assert.Contains(t, pretty, "<a:t>  keep me  </a:t>")
	assert.Contains(t, pretty, "\n  <a:p>\n")
}

func TestCondenseDropsFormattingOnly(t *testing.T) {
	raw := []byte(`<p:sld><!-- note --><a:p>
  <a:r>
    <a:t> spaced </a:t>
  </a:r>
</a:p></p:sld>`)
	condensed := string(Condense(raw))
	assert.Equal(t, `<p:sld><a:p><a:r><a:t> spaced </a:t></a:r></a:p></p:sld>`, condensed)
}

func TestPrettyThenCondenseIsStable(t *testing.T) {
	raw := []byte(`<a:root attr="a &gt; b"><a:t>x</a:t><a:empty/></a:root>`)
	once := Condense(PrettyPrint(raw))
	twice := Condense(PrettyPrint(once))
	assert.Equal(t, string(once), string(twice))
}

func TestValidatePassesOnGeneratedDeck(t *testing.T) {
	deck := buildDeck(t)
	unpacked := filepath.Join(t.TempDir(), "unpacked")
	_, err := Unpack(deck, unpacked)
	require.NoError(t, err)

	results, err := Validate(unpacked, ".pptx")
	require.NoError(t, err)
	require.True(t, AllPassed(results), "results: %+v", results)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"xml_well_formed",
		"namespace_declarations",
		"relationship_targets",
		"slide_layout_references",
	}, names)
}

func TestValidateStopsAfterMalformedXML(t *testing.T) {
	deck := buildDeck(t)
	unpacked := filepath.Join(t.TempDir(), "unpacked")
	_, err := Unpack(deck, unpacked)
	require.NoError(t, err)

	slide := filepath.Join(unpacked, "ppt", "slides", "slide1.xml")
	require.NoError(t, os.WriteFile(slide, []byte("<p:sld><unclosed>"), 0o644))

	results, err := Validate(unpacked, ".pptx")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "xml_well_formed", results[0].Name)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Details[0], "slide1.xml")
}

func TestValidateFlagsTooManyLayoutRels(t *testing.T) {
	deck := buildDeck(t)
	unpacked := filepath.Join(t.TempDir(), "unpacked")
	_, err := Unpack(deck, unpacked)
	require.NoError(t, err)

	rels := filepath.Join(unpacked, "ppt", "slides", "_rels", "slide1.xml.rels")
	broken := `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
</Relationships>`
	require.NoError(t, os.WriteFile(rels, []byte(broken), 0o644))

	results, err := Validate(unpacked, ".pptx")
	require.NoError(t, err)
	var layoutCheck *CheckResult
	for i := range results {
		if results[i].Name == "slide_layout_references" {
			layoutCheck = &results[i]
		}
	}
	require.NotNil(t, layoutCheck)
	assert.False(t, layoutCheck.Passed)
	assert.Contains(t, layoutCheck.Details[0], "expected 1")
}

func TestValidateFlagsDanglingRelTarget(t *testing.T) {
	deck := buildDeck(t)
	unpacked := filepath.Join(t.TempDir(), "unpacked")
	_, err := Unpack(deck, unpacked)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(unpacked, "ppt", "theme", "theme1.xml")))

	results, err := Validate(unpacked, ".pptx")
	require.NoError(t, err)
	var refCheck *CheckResult
	for i := range results {
		if results[i].Name == "relationship_targets" {
			refCheck = &results[i]
		}
	}
	require.NotNil(t, refCheck)
	assert.False(t, refCheck.Passed)
}

func TestDocxChecks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "word"), 0o755))
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:xml="http://www.w3.org/XML/1998/namespace">
  <w:body>
    <w:p><w:r><w:t> leading space</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve"> ok </w:t></w:r></w:p>
    <w:del><w:r><w:t>deleted text</w:t></w:r></w:del>
  </w:body>
</w:document>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "word", "document.xml"), []byte(doc), 0o644))

	results, err := Validate(dir, ".docx")
	require.NoError(t, err)

	byName := map[string]CheckResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	ws := byName["whitespace_preservation"]
	assert.False(t, ws.Passed)
	require.Len(t, ws.Details, 1)
	assert.Contains(t, ws.Details[0], "leading space")

	tc := byName["tracked_change_structure"]
	assert.False(t, tc.Passed)
	assert.Contains(t, tc.Details[0], "deleted text")
}

func TestUnpackSuggestsRSIDForDocx(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "word"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "word", "document.xml"),
		[]byte(`<w:document xmlns:w="http://example.com/w"><w:body/></w:document>`), 0o644))

	docx := filepath.Join(dir, "doc.docx")
	require.NoError(t, Pack(src, docx, PackOptions{}))

	res, err := Unpack(docx, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9A-F]{8}$`, res.RSIDSuggested)
}
