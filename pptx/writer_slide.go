package pptx

import (
	"archive/zip"
	"fmt"
	"strings"
)

func (w *pptxWriter) writeSlide(zw *zip.Writer, slide *Slide, num int) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld>`, nsDrawingML, nsOfficeDocRels, nsPresentationML)
	if slide.Background != nil && slide.Background.Color != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, strings.ToUpper(slide.Background.Color))
	}
	b.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)

	id := 2
	for _, shape := range slide.Shapes {
		w.writeShapeXML(&b, shape, &id)
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", num), b.String())
}

func (w *pptxWriter) writeSlideRels(zw *zip.Writer, slide *Slide, num int) error {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRelationships)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="../slideLayouts/slideLayout1.xml"/>`, relTypeSlideLayout)
	relIdx := 2
	var walk func(shapes []Shape)
	walk = func(shapes []Shape) {
		for _, sh := range shapes {
			switch v := sh.(type) {
			case *PictureShape:
				if len(v.Data) == 0 && v.Path == "" {
					continue
				}
				imgIdx := w.pictureIndex(v)
				ext := v.Format
				if ext == "" {
					ext = "png"
				}
				v.relID = fmt.Sprintf("rId%d", relIdx)
				fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="../media/image%d.%s"/>`, relIdx, relTypeImage, imgIdx, ext)
				relIdx++
			case *GroupShape:
				walk(v.Shapes)
			}
		}
	}
	walk(slide.Shapes)
	b.WriteString(`</Relationships>`)
	return writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), b.String())
}

func (w *pptxWriter) writeShapeXML(b *strings.Builder, shape Shape, id *int) {
	switch v := shape.(type) {
	case *TextShape:
		w.writeTextShapeXML(b, v, id)
	case *PictureShape:
		w.writePictureXML(b, v, id)
	case *LineShape:
		w.writeLineXML(b, v, id)
	case *GroupShape:
		w.writeGroupXML(b, v, id)
	}
}

func (w *pptxWriter) writeTextShapeXML(b *strings.Builder, s *TextShape, id *int) {
	n := *id
	*id++
	name := s.name
	if name == "" {
		if s.Preset != "" {
			name = fmt.Sprintf("Shape %d", n)
		} else {
			name = fmt.Sprintf("TextBox %d", n)
		}
	}

	b.WriteString(`<p:sp><p:nvSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, n, xmlEscape(name))
	if s.Preset == "" {
		b.WriteString(`<p:cNvSpPr txBox="1"/>`)
	} else {
		b.WriteString(`<p:cNvSpPr/>`)
	}
	if s.Placeholder != nil {
		idxAttr := ""
		if s.Placeholder.Index >= 0 {
			idxAttr = fmt.Sprintf(` idx="%d"`, s.Placeholder.Index)
		}
		fmt.Fprintf(b, `<p:nvPr><p:ph type="%s"%s/></p:nvPr>`, s.Placeholder.Type, idxAttr)
	} else {
		b.WriteString(`<p:nvPr/>`)
	}
	b.WriteString(`</p:nvSpPr><p:spPr>`)
	w.writeXfrm(b, &s.BaseShape)

	preset := s.Preset
	if preset == "" {
		preset = "rect"
	}
	fmt.Fprintf(b, `<a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`, preset)
	w.writeFillXML(b, s.Fill)
	w.writeBorderXML(b, s.Border)
	b.WriteString(`</p:spPr><p:txBody>`)
	w.writeBodyPr(b, s)
	b.WriteString(`<a:lstStyle/>`)
	if len(s.Paragraphs) == 0 {
		b.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}
	for _, para := range s.Paragraphs {
		w.writeParagraphXML(b, para)
	}
	b.WriteString(`</p:txBody></p:sp>`)
}

func (w *pptxWriter) writeXfrm(b *strings.Builder, base *BaseShape) {
	rot := ""
	if base.rotation != 0 {
		rot = fmt.Sprintf(` rot="%d"`, base.rotation*60000)
	}
	fmt.Fprintf(b, `<a:xfrm%s><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		rot, base.offsetX, base.offsetY, base.width, base.height)
}

func (w *pptxWriter) writeFillXML(b *strings.Builder, fill *Fill) {
	if fill == nil {
		return
	}
	if fill.None {
		b.WriteString(`<a:noFill/>`)
		return
	}
	fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, strings.ToUpper(fill.Color))
}

func (w *pptxWriter) writeBorderXML(b *strings.Builder, border *Border) {
	if border == nil {
		return
	}
	width := border.WidthPt
	if width == 0 {
		width = 1
	}
	fmt.Fprintf(b, `<a:ln w="%d"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln>`,
		int64(width*float64(EMUPerPoint)), strings.ToUpper(border.Color))
}

func (w *pptxWriter) writeBodyPr(b *strings.Builder, s *TextShape) {
	wrap := "square"
	if !s.WordWrap {
		wrap = "none"
	}
	var attrs strings.Builder
	fmt.Fprintf(&attrs, ` wrap="%s"`, wrap)
	if s.Anchor != "" {
		fmt.Fprintf(&attrs, ` anchor="%s"`, s.Anchor)
	}
	if s.Margins.Set {
		fmt.Fprintf(&attrs, ` lIns="%d" tIns="%d" rIns="%d" bIns="%d"`,
			s.Margins.Left, s.Margins.Top, s.Margins.Right, s.Margins.Bottom)
	}
	fmt.Fprintf(b, `<a:bodyPr%s/>`, attrs.String())
}

func (w *pptxWriter) writeParagraphXML(b *strings.Builder, para *Paragraph) {
	b.WriteString(`<a:p>`)

	var pprAttrs strings.Builder
	if para.Alignment != "" {
		fmt.Fprintf(&pprAttrs, ` algn="%s"`, para.Alignment)
	}
	if para.Level > 0 {
		fmt.Fprintf(&pprAttrs, ` lvl="%d"`, para.Level)
	}
	var pprBody strings.Builder
	if ls := para.LineSpacing; ls != nil {
		if ls.Points > 0 {
			fmt.Fprintf(&pprBody, `<a:lnSpc><a:spcPts val="%d"/></a:lnSpc>`, int(ls.Points*100))
		} else if ls.Multiple > 0 {
			fmt.Fprintf(&pprBody, `<a:lnSpc><a:spcPct val="%d"/></a:lnSpc>`, int(ls.Multiple*100000))
		}
	}
	if para.SpaceBefore != nil {
		fmt.Fprintf(&pprBody, `<a:spcBef><a:spcPts val="%d"/></a:spcBef>`, int(*para.SpaceBefore*100))
	}
	if para.SpaceAfter != nil {
		fmt.Fprintf(&pprBody, `<a:spcAft><a:spcPts val="%d"/></a:spcAft>`, int(*para.SpaceAfter*100))
	}
	if bu := para.Bullet; bu != nil {
		switch {
		case bu.None:
			pprBody.WriteString(`<a:buNone/>`)
		case bu.AutoNum != "":
			fmt.Fprintf(&pprBody, `<a:buAutoNum type="%s"/>`, bu.AutoNum)
		case bu.Char != "":
			fmt.Fprintf(&pprBody, `<a:buFont typeface="Arial" panose="020B0604020202020204" pitchFamily="34" charset="0"/><a:buChar char="%s"/>`, xmlEscape(bu.Char))
		}
	}
	if pprAttrs.Len() > 0 || pprBody.Len() > 0 {
		fmt.Fprintf(b, `<a:pPr%s>%s</a:pPr>`, pprAttrs.String(), pprBody.String())
	}

	for _, run := range para.Runs {
		if run.Break {
			b.WriteString(`<a:br/>`)
			continue
		}
		w.writeRunXML(b, run)
	}
	b.WriteString(`</a:p>`)
}

func (w *pptxWriter) writeRunXML(b *strings.Builder, run *TextRun) {
	f := run.Font
	var attrs strings.Builder
	attrs.WriteString(` lang="en-US" dirty="0"`)
	if f.Size > 0 {
		fmt.Fprintf(&attrs, ` sz="%d"`, int(f.Size*100))
	}
	if f.Bold {
		attrs.WriteString(` b="1"`)
	}
	if f.Italic {
		attrs.WriteString(` i="1"`)
	}
	if f.Underline {
		attrs.WriteString(` u="sng"`)
	}
	var body strings.Builder
	if f.Color != "" {
		fmt.Fprintf(&body, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, strings.ToUpper(f.Color))
	} else if f.ThemeColor != "" {
		fmt.Fprintf(&body, `<a:solidFill><a:schemeClr val="%s"/></a:solidFill>`, f.ThemeColor)
	}
	if f.Name != "" {
		fmt.Fprintf(&body, `<a:latin typeface="%s"/>`, xmlEscape(f.Name))
	}
	fmt.Fprintf(b, `<a:r><a:rPr%s>%s</a:rPr><a:t>%s</a:t></a:r>`, attrs.String(), body.String(), xmlEscape(run.Text))
}

func (w *pptxWriter) writePictureXML(b *strings.Builder, pic *PictureShape, id *int) {
	n := *id
	*id++
	name := pic.name
	if name == "" {
		name = fmt.Sprintf("Picture %d", n)
	}
	rid := pic.relID
	if rid == "" {
		rid = fmt.Sprintf("rId%d", w.pictureIndex(pic)+1)
	}
	b.WriteString(`<p:pic><p:nvPicPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, n, xmlEscape(name))
	b.WriteString(`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`)
	fmt.Fprintf(b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, rid)
	b.WriteString(`<p:spPr>`)
	w.writeXfrm(b, &pic.BaseShape)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)
}

func (w *pptxWriter) writeLineXML(b *strings.Builder, line *LineShape, id *int) {
	n := *id
	*id++
	name := line.name
	if name == "" {
		name = fmt.Sprintf("Connector %d", n)
	}
	color := line.Color
	if color == "" {
		color = "000000"
	}
	width := line.WidthPt
	if width == 0 {
		width = 1
	}
	b.WriteString(`<p:cxnSp><p:nvCxnSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, n, xmlEscape(name))
	b.WriteString(`<p:cNvCxnSpPr/><p:nvPr/></p:nvCxnSpPr><p:spPr>`)
	w.writeXfrm(b, &line.BaseShape)
	fmt.Fprintf(b, `<a:prstGeom prst="line"><a:avLst/></a:prstGeom><a:ln w="%d"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln></p:spPr></p:cxnSp>`,
		int64(width*float64(EMUPerPoint)), strings.ToUpper(color))
}

func (w *pptxWriter) writeGroupXML(b *strings.Builder, group *GroupShape, id *int) {
	n := *id
	*id++
	name := group.name
	if name == "" {
		name = fmt.Sprintf("Group %d", n)
	}
	b.WriteString(`<p:grpSp><p:nvGrpSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, n, xmlEscape(name))
	b.WriteString(`<p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr>`)
	fmt.Fprintf(b, `<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/><a:chOff x="%d" y="%d"/><a:chExt cx="%d" cy="%d"/></a:xfrm>`,
		group.offsetX, group.offsetY, group.width, group.height,
		group.ChildOffsetX, group.ChildOffsetY, group.ChildExtentX, group.ChildExtentY)
	b.WriteString(`</p:grpSpPr>`)
	for _, child := range group.Shapes {
		w.writeShapeXML(b, child, id)
	}
	b.WriteString(`</p:grpSp>`)
}
