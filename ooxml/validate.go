package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"
)

// CheckResult is the outcome of one validation check.
type CheckResult struct {
	Name    string   `json:"name"`
	Passed  bool     `json:"passed"`
	Details []string `json:"details,omitempty"`
}

// Validate runs structural checks over an unpacked document tree.
// docType is the extension of the original file (".pptx" etc).
// Checks after well-formedness are skipped when any part fails to
// parse, since they would only produce noise.
func Validate(unpackedDir, docType string) ([]CheckResult, error) {
	if !validExtensions[docType] {
		return nil, fmt.Errorf("unsupported document type %q", docType)
	}
	parts, err := xmlParts(unpackedDir)
	if err != nil {
		return nil, err
	}

	var results []CheckResult
	wf := checkWellFormed(unpackedDir, parts)
	results = append(results, wf)
	if !wf.Passed {
		return results, nil
	}

	results = append(results, checkNamespaces(unpackedDir, parts))
	results = append(results, checkFileReferences(unpackedDir, parts))

	switch docType {
	case ".pptx":
		results = append(results, checkSlideLayouts(unpackedDir, parts))
	case ".docx":
		results = append(results, checkWhitespacePreserve(unpackedDir))
		results = append(results, checkTrackedChanges(unpackedDir))
	}
	return results, nil
}

// AllPassed reports whether every check in results passed.
func AllPassed(results []CheckResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func xmlParts(root string) ([]string, error) {
	var parts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isXMLPart(path) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			parts = append(parts, filepath.ToSlash(rel))
		}
		return nil
	})
	return parts, err
}

func wellFormed(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

func checkWellFormed(root string, parts []string) CheckResult {
	res := CheckResult{Name: "xml_well_formed", Passed: true}
	for _, part := range parts {
		data, err := os.ReadFile(filepath.Join(root, part))
		if err != nil || !wellFormed(data) {
			res.Passed = false
			res.Details = append(res.Details, part)
		}
	}
	return res
}

// checkNamespaces verifies that every prefix named by an mc:Ignorable
// attribute is actually declared on the root element. Office rejects
// documents where they diverge.
func checkNamespaces(root string, parts []string) CheckResult {
	res := CheckResult{Name: "namespace_declarations", Passed: true}
	for _, part := range parts {
		data, err := os.ReadFile(filepath.Join(root, part))
		if err != nil {
			continue
		}
		for _, missing := range undeclaredIgnorable(data) {
			res.Passed = false
			res.Details = append(res.Details, fmt.Sprintf("%s: prefix %q in mc:Ignorable is not declared", part, missing))
		}
	}
	return res
}

func undeclaredIgnorable(data []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		declared := map[string]bool{}
		ignorable := ""
		for _, a := range start.Attr {
			if a.Name.Space == "xmlns" {
				declared[a.Name.Local] = true
			}
			if a.Name.Local == "Ignorable" {
				ignorable = a.Value
			}
		}
		var missing []string
		for _, prefix := range strings.Fields(ignorable) {
			if !declared[prefix] {
				missing = append(missing, prefix)
			}
		}
		return missing
	}
}

type relEntry struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relFile struct {
	Rels []relEntry `xml:"Relationship"`
}

func readRelFile(path string) (*relFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf relFile
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

func isExternalTarget(r relEntry) bool {
	return r.TargetMode == "External" ||
		strings.HasPrefix(r.Target, "http") ||
		strings.HasPrefix(r.Target, "mailto")
}

// checkFileReferences resolves every relationship target against the
// unpacked tree. The package-level _rels/.rels resolves from the
// package root; part rels resolve from the directory above their
// _rels folder.
func checkFileReferences(root string, parts []string) CheckResult {
	res := CheckResult{Name: "relationship_targets", Passed: true}
	for _, part := range parts {
		if !strings.HasSuffix(part, ".rels") {
			continue
		}
		rf, err := readRelFile(filepath.Join(root, part))
		if err != nil {
			res.Passed = false
			res.Details = append(res.Details, fmt.Sprintf("%s: %v", part, err))
			continue
		}
		base := root
		if dir := filepath.Dir(filepath.Dir(filepath.FromSlash(part))); dir != "." {
			base = filepath.Join(root, dir)
		}
		for _, r := range rf.Rels {
			if isExternalTarget(r) {
				continue
			}
			target := filepath.Join(base, filepath.FromSlash(strings.TrimPrefix(r.Target, "/")))
			if strings.HasPrefix(r.Target, "/") {
				target = filepath.Join(root, filepath.FromSlash(r.Target))
			}
			if _, err := os.Stat(target); err != nil {
				res.Passed = false
				res.Details = append(res.Details, fmt.Sprintf("%s: target %s does not exist", part, r.Target))
			}
		}
	}
	return res
}

// checkSlideLayouts requires exactly one slideLayout relationship per
// slide. PowerPoint refuses to open decks where a slide has none or
// several.
func checkSlideLayouts(root string, parts []string) CheckResult {
	res := CheckResult{Name: "slide_layout_references", Passed: true}
	for _, part := range parts {
		if !strings.HasPrefix(part, "ppt/slides/_rels/") || !strings.HasSuffix(part, ".xml.rels") {
			continue
		}
		rf, err := readRelFile(filepath.Join(root, part))
		if err != nil {
			res.Passed = false
			res.Details = append(res.Details, fmt.Sprintf("%s: %v", part, err))
			continue
		}
		layouts := 0
		for _, r := range rf.Rels {
			if strings.Contains(r.Type, "slideLayout") {
				layouts++
			}
		}
		if layouts != 1 {
			res.Passed = false
			res.Details = append(res.Details, fmt.Sprintf("%s: %d slideLayout relationships, expected 1", part, layouts))
		}
	}
	return res
}

// checkWhitespacePreserve flags w:t runs whose leading or trailing
// spaces would be eaten by Word without xml:space="preserve".
func checkWhitespacePreserve(root string) CheckResult {
	res := CheckResult{Name: "whitespace_preservation", Passed: true}
	forEachDocumentText(root, func(text string, preserve bool, inDeletion bool) {
		if text != strings.TrimSpace(text) && !preserve {
			res.Passed = false
			res.Details = append(res.Details, fmt.Sprintf("w:t %q needs xml:space=\"preserve\"", text))
		}
	})
	return res
}

// checkTrackedChanges flags literal text inside w:del elements.
// Deleted runs must use w:delText instead.
func checkTrackedChanges(root string) CheckResult {
	res := CheckResult{Name: "tracked_change_structure", Passed: true}
	forEachDocumentText(root, func(text string, preserve bool, inDeletion bool) {
		if inDeletion {
			res.Passed = false
			res.Details = append(res.Details, fmt.Sprintf("w:t %q inside w:del, use w:delText", text))
		}
	})
	return res
}

func forEachDocumentText(root string, fn func(text string, preserve, inDeletion bool)) {
	data, err := os.ReadFile(filepath.Join(root, "word", "document.xml"))
	if err != nil {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	delDepth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "del":
				delDepth++
			case "t":
				preserve := false
				for _, a := range t.Attr {
					if a.Name.Local == "space" && a.Value == "preserve" {
						preserve = true
					}
				}
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return
				}
				fn(text, preserve, delDepth > 0)
			}
		case xml.EndElement:
			if t.Name.Local == "del" {
				delDepth--
			}
		}
	}
}
