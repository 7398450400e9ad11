package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
)

// Zip guards. A hostile package must not be able to exhaust memory
// through oversized or overnumerous entries.
const (
	maxZipEntrySize = 50 * 1024 * 1024
	maxZipTotalSize = 200 * 1024 * 1024
	maxZipEntries   = 10000
)

// Open reads a .pptx package from disk into a Presentation.
func Open(filename string) (*Presentation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}
	return OpenReader(f, st.Size())
}

// OpenReader reads a .pptx package from an io.ReaderAt.
func OpenReader(r io.ReaderAt, size int64) (*Presentation, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read package: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("package has %d entries, limit is %d", len(zr.File), maxZipEntries)
	}
	var total uint64
	for _, f := range zr.File {
		if f.UncompressedSize64 > maxZipEntrySize {
			return nil, fmt.Errorf("package entry %s exceeds %d bytes", f.Name, int64(maxZipEntrySize))
		}
		total += f.UncompressedSize64
		if total > maxZipTotalSize {
			return nil, fmt.Errorf("package exceeds %d bytes uncompressed", int64(maxZipTotalSize))
		}
	}
	return readPackage(zr)
}

type packageReader struct {
	files map[string]*zip.File
}

func readPackage(zr *zip.Reader) (*Presentation, error) {
	pr := &packageReader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pr.files[f.Name] = f
	}

	pres := New()

	if err := pr.readPresentationXML(pres); err != nil {
		return nil, err
	}
	if data, err := pr.readFile("ppt/slideMasters/slideMaster1.xml"); err == nil {
		pres.Styles = parseMasterStyles(data)
	}

	slideParts, err := pr.slidePartsInOrder()
	if err != nil {
		return nil, err
	}
	for _, part := range slideParts {
		data, err := pr.readFile(part)
		if err != nil {
			return nil, fmt.Errorf("slide part %s: %w", part, err)
		}
		slide, err := parseSlideXML(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", part, err)
		}
		pr.applyLayoutInheritance(part, slide)
		pr.loadSlideMedia(part, slide)
		pres.AppendSlide(slide)
	}
	return pres, nil
}

func (pr *packageReader) readFile(name string) ([]byte, error) {
	f, ok := pr.files[name]
	if !ok {
		return nil, fmt.Errorf("part %s not in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxZipEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read part %s: %w", name, err)
	}
	if len(data) > maxZipEntrySize {
		return nil, fmt.Errorf("part %s exceeds %d bytes", name, int64(maxZipEntrySize))
	}
	return data, nil
}

// relationship is one entry of a .rels part.
type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type relationships struct {
	Rels []relationship `xml:"Relationship"`
}

func (pr *packageReader) readRels(partName string) (map[string]relationship, error) {
	relPart := path.Join(path.Dir(partName), "_rels", path.Base(partName)+".rels")
	data, err := pr.readFile(relPart)
	if err != nil {
		return nil, err
	}
	var rels relationships
	if err := unmarshalXML(data, &rels); err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPart, err)
	}
	out := make(map[string]relationship, len(rels.Rels))
	for _, r := range rels.Rels {
		out[r.ID] = r
	}
	return out, nil
}

// readPresentationXML picks up the slide canvas size.
func (pr *packageReader) readPresentationXML(pres *Presentation) error {
	data, err := pr.readFile("ppt/presentation.xml")
	if err != nil {
		return err
	}
	var doc struct {
		SldSz struct {
			Cx int64 `xml:"cx,attr"`
			Cy int64 `xml:"cy,attr"`
		} `xml:"sldSz"`
	}
	if err := unmarshalXML(data, &doc); err != nil {
		return fmt.Errorf("parse presentation.xml: %w", err)
	}
	if doc.SldSz.Cx > 0 && doc.SldSz.Cy > 0 {
		pres.SetSlideSize(doc.SldSz.Cx, doc.SldSz.Cy)
	}
	return nil
}

// slidePartsInOrder resolves the deck order from sldIdLst through the
// presentation rels, falling back to sorted part names when either part
// is missing.
func (pr *packageReader) slidePartsInOrder() ([]string, error) {
	data, err := pr.readFile("ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	var doc struct {
		SldIDLst struct {
			SldIDs []struct {
				RID string `xml:"id,attr"`
			} `xml:"sldId"`
		} `xml:"sldIdLst"`
	}
	if err := unmarshalXML(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presentation.xml: %w", err)
	}
	rels, err := pr.readRels("ppt/presentation.xml")
	if err != nil {
		rels = nil
	}

	var parts []string
	for _, sid := range doc.SldIDLst.SldIDs {
		rel, ok := rels[sid.RID]
		if !ok {
			continue
		}
		parts = append(parts, resolveTarget("ppt/presentation.xml", rel.Target))
	}
	if len(parts) > 0 {
		return parts, nil
	}
	for name := range pr.files {
		if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
			parts = append(parts, name)
		}
	}
	sort.Slice(parts, func(i, j int) bool {
		return slidePartNum(parts[i]) < slidePartNum(parts[j])
	})
	return parts, nil
}

// loadSlideMedia fills picture data from the slide's relationships.
// Missing media is tolerated; the picture stays a geometry-only shape.
func (pr *packageReader) loadSlideMedia(slidePart string, slide *Slide) {
	rels, err := pr.readRels(slidePart)
	if err != nil {
		return
	}
	var walk func(shapes []Shape)
	walk = func(shapes []Shape) {
		for _, sh := range shapes {
			switch v := sh.(type) {
			case *PictureShape:
				rel, ok := rels[v.relID]
				if !ok {
					continue
				}
				target := resolveTarget(slidePart, rel.Target)
				if data, err := pr.readFile(target); err == nil {
					v.Data = data
					v.Format = strings.TrimPrefix(path.Ext(target), ".")
				}
			case *GroupShape:
				walk(v.Shapes)
			}
		}
	}
	walk(slide.Shapes)
}

// resolveTarget resolves a relationship target relative to its source
// part.
func resolveTarget(fromPart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(fromPart), target))
}

func slidePartNum(part string) int {
	base := strings.TrimSuffix(path.Base(part), ".xml")
	n := 0
	for _, c := range strings.TrimPrefix(base, "slide") {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// unmarshalXML decodes OOXML markup tolerating non-UTF-8 declared
// encodings.
func unmarshalXML(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

// newXMLDecoder returns a streaming decoder with the same charset
// handling as unmarshalXML.
func newXMLDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}
