package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// OOXML namespace and relationship-type constants used by the writer.
const (
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtProps       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Save writes the presentation as a .pptx package to a file.
func (p *Presentation) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write streams the presentation as a .pptx package.
func (p *Presentation) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	pw := &pptxWriter{pres: p}
	if err := pw.writeParts(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

type pptxWriter struct {
	pres *Presentation
}

func (w *pptxWriter) writeParts(zw *zip.Writer) error {
	steps := []func(*zip.Writer) error{
		w.writeContentTypes,
		w.writeRootRels,
		w.writeCoreProps,
		w.writeAppProps,
		w.writePresentationXML,
		w.writePresentationRels,
		w.writeTheme,
		w.writeSlideMaster,
		w.writeSlideLayout,
		w.writeSlides,
		w.writeMedia,
	}
	for _, step := range steps {
		if err := step(zw); err != nil {
			return err
		}
	}
	return nil
}

func writePart(zw *zip.Writer, name, content string) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	return nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func (w *pptxWriter) writeContentTypes(zw *zip.Writer) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Types xmlns="%s">`, nsContentTypes)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for _, ext := range w.mediaExtensions() {
		ct := "image/" + ext
		if ext == "jpg" {
			ct = "image/jpeg"
		}
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, ext, ct)
	}
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range w.pres.slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return writePart(zw, "[Content_Types].xml", b.String())
}

func (w *pptxWriter) mediaExtensions() []string {
	seen := map[string]bool{}
	var exts []string
	for _, pic := range w.allPictures() {
		ext := pic.Format
		if ext == "" {
			ext = "png"
		}
		if !seen[ext] {
			seen[ext] = true
			exts = append(exts, ext)
		}
	}
	return exts
}

// allPictures returns every picture with embeddable bytes, in deck
// order, groups included. Index order defines media part numbering.
func (w *pptxWriter) allPictures() []*PictureShape {
	var pics []*PictureShape
	var walk func(shapes []Shape)
	walk = func(shapes []Shape) {
		for _, sh := range shapes {
			switch v := sh.(type) {
			case *PictureShape:
				if len(v.Data) > 0 || v.Path != "" {
					pics = append(pics, v)
				}
			case *GroupShape:
				walk(v.Shapes)
			}
		}
	}
	for _, s := range w.pres.slides {
		walk(s.Shapes)
	}
	return pics
}

func (w *pptxWriter) pictureIndex(target *PictureShape) int {
	for i, pic := range w.allPictures() {
		if pic == target {
			return i + 1
		}
	}
	return 0
}

func (w *pptxWriter) writeRootRels(zw *zip.Writer) error {
	content := xmlHeader + fmt.Sprintf(`<Relationships xmlns="%s">`+
		`<Relationship Id="rId1" Type="%s" Target="ppt/presentation.xml"/>`+
		`<Relationship Id="rId2" Type="%s" Target="docProps/core.xml"/>`+
		`<Relationship Id="rId3" Type="%s" Target="docProps/app.xml"/>`+
		`</Relationships>`, nsRelationships, relTypeOfficeDocument, relTypeCoreProps, relTypeExtProps)
	return writePart(zw, "_rels/.rels", content)
}

func (w *pptxWriter) writeCoreProps(zw *zip.Writer) error {
	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	content := xmlHeader + fmt.Sprintf(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`+
		`<dc:title>%s</dc:title>`+
		`<dc:creator>%s</dc:creator>`+
		`<dc:subject>%s</dc:subject>`+
		`<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`+
		`<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`+
		`</cp:coreProperties>`,
		xmlEscape(w.pres.Title), xmlEscape(w.pres.Author), xmlEscape(w.pres.Subject), now, now)
	return writePart(zw, "docProps/core.xml", content)
}

func (w *pptxWriter) writeAppProps(zw *zip.Writer) error {
	content := xmlHeader + fmt.Sprintf(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`+
		`<Slides>%d</Slides>`+
		`<Application>pptx-mcp-server</Application>`+
		`</Properties>`, len(w.pres.slides))
	return writePart(zw, "docProps/app.xml", content)
}

func (w *pptxWriter) writePresentationXML(zw *zip.Writer) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsDrawingML, nsOfficeDocRels, nsPresentationML)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if len(w.pres.slides) > 0 {
		b.WriteString(`<p:sldIdLst>`)
		for i := range w.pres.slides {
			fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
		}
		b.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, w.pres.slideWidth, w.pres.slideHeight)
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, w.pres.slideHeight, w.pres.slideWidth)
	b.WriteString(`</p:presentation>`)
	return writePart(zw, "ppt/presentation.xml", b.String())
}

func (w *pptxWriter) writePresentationRels(zw *zip.Writer) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRelationships)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="slideMasters/slideMaster1.xml"/>`, relTypeSlideMaster)
	for i := range w.pres.slides {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, i+2, relTypeSlide, i+1)
	}
	fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="theme/theme1.xml"/>`, len(w.pres.slides)+2, relTypeTheme)
	b.WriteString(`</Relationships>`)
	return writePart(zw, "ppt/_rels/presentation.xml.rels", b.String())
}

func (w *pptxWriter) writeSlides(zw *zip.Writer) error {
	for i, slide := range w.pres.slides {
		if err := w.writeSlide(zw, slide, i+1); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
		if err := w.writeSlideRels(zw, slide, i+1); err != nil {
			return fmt.Errorf("slide %d rels: %w", i+1, err)
		}
	}
	return nil
}

func (w *pptxWriter) writeMedia(zw *zip.Writer) error {
	for i, pic := range w.allPictures() {
		data := pic.Data
		if len(data) == 0 && pic.Path != "" {
			var err error
			data, err = os.ReadFile(pic.Path)
			if err != nil {
				return fmt.Errorf("read image %s: %w", pic.Path, err)
			}
		}
		ext := pic.Format
		if ext == "" {
			ext = "png"
		}
		f, err := zw.Create(fmt.Sprintf("ppt/media/image%d.%s", i+1, ext))
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return err
		}
	}
	return nil
}

func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
