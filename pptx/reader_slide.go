package pptx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// parseSlideXML builds a Slide from one ppt/slides/slideN.xml part.
// Element matching is on local names so the parser is indifferent to
// prefix choices in the source markup.
func parseSlideXML(data []byte) (*Slide, error) {
	dec := newXMLDecoder(data)
	slide := &Slide{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("slide markup: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "bg":
			fill, err := parseBackground(dec)
			if err != nil {
				return nil, err
			}
			slide.Background = fill
		case "spTree":
			shapes, err := parseShapeChildren(dec, se.Name.Local)
			if err != nil {
				return nil, err
			}
			slide.Shapes = shapes
			return slide, nil
		}
	}
	return slide, nil
}

// parseShapeChildren consumes shape elements until the end of the
// enclosing container (spTree or grpSp).
func parseShapeChildren(dec *xml.Decoder, container string) ([]Shape, error) {
	var shapes []Shape
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("shape tree: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var shape Shape
			switch t.Name.Local {
			case "sp":
				shape, err = parseSp(dec)
			case "grpSp":
				shape, err = parseGrpSp(dec)
			case "pic":
				shape, err = parsePic(dec)
			case "cxnSp":
				shape, err = parseCxnSp(dec)
			case "graphicFrame":
				shape, err = parseGraphicFrame(dec)
			default:
				err = skipElement(dec)
			}
			if err != nil {
				return nil, err
			}
			if shape != nil {
				shapes = append(shapes, shape)
			}
		case xml.EndElement:
			if t.Name.Local == container {
				return shapes, nil
			}
		}
	}
}

func parseSp(dec *xml.Decoder) (*TextShape, error) {
	ts := &TextShape{WordWrap: true}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "nvSpPr", "nvPr":
				// Descend; cNvPr and ph live below these.
				continue
			case "cNvPr":
				ts.name = attr(t, "name")
				ts.hidden = attr(t, "hidden") == "1"
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "ph":
				ref := &PlaceholderRef{Type: PlaceholderBody, Index: -1}
				if v := attr(t, "type"); v != "" {
					ref.Type = PlaceholderType(v)
				}
				if v := attr(t, "idx"); v != "" {
					ref.Index, _ = strconv.Atoi(v)
				}
				ts.Placeholder = ref
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "spPr":
				if err := parseSpPr(dec, &ts.BaseShape, &ts.Preset, &ts.Fill, &ts.Border); err != nil {
					return nil, err
				}
			case "txBody":
				if err := parseTextBody(dec, ts); err != nil {
					return nil, err
				}
			default:
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "sp" {
				return ts, nil
			}
		}
	}
}

// parseSpPr reads shape properties: transform, preset geometry, fill
// and outline. Fill and border pointers may be nil when the caller does
// not model them.
func parseSpPr(dec *xml.Decoder, base *BaseShape, preset *string, fill **Fill, border **Border) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "xfrm":
				if err := parseXfrm(dec, t, base, nil); err != nil {
					return err
				}
			case "prstGeom":
				if preset != nil {
					*preset = attr(t, "prst")
				}
				if err := skipElement(dec); err != nil {
					return err
				}
			case "solidFill":
				color, theme, err := parseFillColor(dec)
				if err != nil {
					return err
				}
				if fill != nil {
					f := &Fill{Color: color}
					if color == "" && theme != "" {
						f.Color = theme
					}
					*fill = f
				}
			case "noFill":
				if fill != nil {
					*fill = &Fill{None: true}
				}
				if err := skipElement(dec); err != nil {
					return err
				}
			case "ln":
				b, err := parseLn(dec)
				if err != nil {
					return err
				}
				if border != nil && b != nil {
					*border = b
				}
			default:
				if err := skipElement(dec); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "spPr" {
				return nil
			}
		}
	}
}

// parseXfrm reads a:off and a:ext into the base, and a:chOff/a:chExt
// into the group when one is supplied.
func parseXfrm(dec *xml.Decoder, start xml.StartElement, base *BaseShape, group *GroupShape) error {
	if v := attr(start, "rot"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			base.rotation = n / 60000
		}
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "off":
				base.offsetX = attrEMU(t, "x")
				base.offsetY = attrEMU(t, "y")
			case "ext":
				base.width = attrEMU(t, "cx")
				base.height = attrEMU(t, "cy")
			case "chOff":
				if group != nil {
					group.ChildOffsetX = attrEMU(t, "x")
					group.ChildOffsetY = attrEMU(t, "y")
				}
			case "chExt":
				if group != nil {
					group.ChildExtentX = attrEMU(t, "cx")
					group.ChildExtentY = attrEMU(t, "cy")
				}
			}
			if err := skipElement(dec); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "xfrm" {
				return nil
			}
		}
	}
}

func parseGrpSp(dec *xml.Decoder) (*GroupShape, error) {
	gs := &GroupShape{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cNvPr":
				gs.name = attr(t, "name")
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "grpSpPr":
				if err := parseGrpSpPr(dec, gs); err != nil {
					return nil, err
				}
			case "sp", "pic", "cxnSp", "graphicFrame":
				// Re-enter the child through the shared dispatcher by
				// handling it inline.
				var shape Shape
				switch t.Name.Local {
				case "sp":
					shape, err = parseSp(dec)
				case "pic":
					shape, err = parsePic(dec)
				case "cxnSp":
					shape, err = parseCxnSp(dec)
				case "graphicFrame":
					shape, err = parseGraphicFrame(dec)
				}
				if err != nil {
					return nil, err
				}
				gs.Shapes = append(gs.Shapes, shape)
			case "grpSp":
				child, err := parseGrpSp(dec)
				if err != nil {
					return nil, err
				}
				gs.Shapes = append(gs.Shapes, child)
			case "nvGrpSpPr":
				// Holds cNvPr; descend one level for the name.
				continue
			default:
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "grpSp" {
				return gs, nil
			}
		}
	}
}

func parseGrpSpPr(dec *xml.Decoder, gs *GroupShape) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "xfrm" {
				if err := parseXfrm(dec, t, &gs.BaseShape, gs); err != nil {
					return err
				}
			} else if err := skipElement(dec); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "grpSpPr" {
				return nil
			}
		}
	}
}

func parsePic(dec *xml.Decoder) (*PictureShape, error) {
	ps := &PictureShape{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cNvPr":
				ps.name = attr(t, "name")
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "blip":
				ps.relID = attr(t, "embed")
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "xfrm":
				if err := parseXfrm(dec, t, &ps.BaseShape, nil); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "pic" {
				return ps, nil
			}
		}
	}
}

func parseCxnSp(dec *xml.Decoder) (*LineShape, error) {
	ls := &LineShape{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cNvPr":
				ls.name = attr(t, "name")
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "xfrm":
				if err := parseXfrm(dec, t, &ls.BaseShape, nil); err != nil {
					return nil, err
				}
			case "ln":
				b, err := parseLn(dec)
				if err != nil {
					return nil, err
				}
				if b != nil {
					ls.Color = b.Color
					ls.WidthPt = b.WidthPt
				}
			}
		case xml.EndElement:
			if t.Name.Local == "cxnSp" {
				return ls, nil
			}
		}
	}
}

func parseGraphicFrame(dec *xml.Decoder) (*FrameShape, error) {
	fs := &FrameShape{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cNvPr":
				fs.name = attr(t, "name")
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			case "xfrm":
				if err := parseXfrm(dec, t, &fs.BaseShape, nil); err != nil {
					return nil, err
				}
			case "graphic":
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "graphicFrame" {
				return fs, nil
			}
		}
	}
}

func parseLn(dec *xml.Decoder) (*Border, error) {
	b := &Border{}
	seen := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "solidFill" {
				color, theme, err := parseFillColor(dec)
				if err != nil {
					return nil, err
				}
				if color == "" {
					color = theme
				}
				b.Color = color
				seen = true
			} else if err := skipElement(dec); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "ln" {
				if !seen {
					return nil, nil
				}
				return b, nil
			}
		}
	}
}

// parseFillColor consumes a solidFill element and returns the literal
// RGB hex or the scheme color name.
func parseFillColor(dec *xml.Decoder) (rgb, theme string, err error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "srgbClr":
				rgb = attr(t, "val")
			case "schemeClr":
				theme = attr(t, "val")
			}
			if err := skipElement(dec); err != nil {
				return "", "", err
			}
		case xml.EndElement:
			if t.Name.Local == "solidFill" {
				return rgb, theme, nil
			}
		}
	}
}

func parseBackground(dec *xml.Decoder) (*Fill, error) {
	var fill *Fill
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "solidFill" {
				rgb, theme, err := parseFillColor(dec)
				if err != nil {
					return nil, err
				}
				if rgb == "" {
					rgb = theme
				}
				fill = &Fill{Color: rgb}
			}
		case xml.EndElement:
			if t.Name.Local == "bg" {
				return fill, nil
			}
		}
	}
}

const (
	defaultMarginLR EMU = 91440
	defaultMarginTB EMU = 45720
)

func parseTextBody(dec *xml.Decoder, ts *TextShape) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "bodyPr":
				ts.WordWrap = attr(t, "wrap") != "none"
				ts.Anchor = attr(t, "anchor")
				m := Insets{
					Left: defaultMarginLR, Right: defaultMarginLR,
					Top: defaultMarginTB, Bottom: defaultMarginTB,
					Set: true,
				}
				if v := attr(t, "lIns"); v != "" {
					m.Left = parseEMU(v)
				}
				if v := attr(t, "rIns"); v != "" {
					m.Right = parseEMU(v)
				}
				if v := attr(t, "tIns"); v != "" {
					m.Top = parseEMU(v)
				}
				if v := attr(t, "bIns"); v != "" {
					m.Bottom = parseEMU(v)
				}
				ts.Margins = m
				if err := skipElement(dec); err != nil {
					return err
				}
			case "lstStyle":
				sz, err := parseListStyleDefault(dec)
				if err != nil {
					return err
				}
				if sz > 0 {
					ts.DefaultFontSize = sz
				}
			case "p":
				para, err := parseParagraph(dec)
				if err != nil {
					return err
				}
				ts.Paragraphs = append(ts.Paragraphs, para)
			default:
				if err := skipElement(dec); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "txBody" {
				return nil
			}
		}
	}
}

func parseParagraph(dec *xml.Decoder) (*Paragraph, error) {
	para := &Paragraph{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := parsePPr(dec, t, para); err != nil {
					return nil, err
				}
			case "r", "fld":
				run, err := parseRun(dec, t.Name.Local)
				if err != nil {
					return nil, err
				}
				para.Runs = append(para.Runs, run)
			case "br":
				para.Runs = append(para.Runs, &TextRun{Text: "\n", Break: true})
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			default:
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return para, nil
			}
		}
	}
}

// parseListStyleDefault pulls the level-1 defRPr size, in points, out
// of an a:lstStyle block. Returns 0 when the block sets none.
func parseListStyleDefault(dec *xml.Decoder) (float64, error) {
	var size float64
	depth := 1
	inLvl1 := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "lvl1pPr":
				inLvl1 = true
			case "defRPr":
				if inLvl1 && size == 0 {
					if n, err := strconv.Atoi(attr(t, "sz")); err == nil {
						size = float64(n) / 100
					}
				}
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "lvl1pPr" {
				inLvl1 = false
			}
		}
	}
	return size, nil
}

func parsePPr(dec *xml.Decoder, start xml.StartElement, para *Paragraph) error {
	para.Alignment = attr(start, "algn")
	if v := attr(start, "lvl"); v != "" {
		para.Level, _ = strconv.Atoi(v)
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "lnSpc":
				ls, err := parseSpacingValue(dec, t.Name.Local)
				if err != nil {
					return err
				}
				para.LineSpacing = ls
			case "spcBef":
				ls, err := parseSpacingValue(dec, t.Name.Local)
				if err != nil {
					return err
				}
				if ls != nil && ls.Points > 0 {
					pt := ls.Points
					para.SpaceBefore = &pt
				}
			case "spcAft":
				ls, err := parseSpacingValue(dec, t.Name.Local)
				if err != nil {
					return err
				}
				if ls != nil && ls.Points > 0 {
					pt := ls.Points
					para.SpaceAfter = &pt
				}
			case "buChar":
				para.Bullet = &Bullet{Char: attr(t, "char")}
				if err := skipElement(dec); err != nil {
					return err
				}
			case "buAutoNum":
				para.Bullet = &Bullet{AutoNum: attr(t, "type")}
				if err := skipElement(dec); err != nil {
					return err
				}
			case "buNone":
				para.Bullet = &Bullet{None: true}
				if err := skipElement(dec); err != nil {
					return err
				}
			default:
				if err := skipElement(dec); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				return nil
			}
		}
	}
}

// parseSpacingValue consumes a lnSpc/spcBef/spcAft element. spcPts
// values are centipoints; spcPct values are thousandths of a percent.
func parseSpacingValue(dec *xml.Decoder, container string) (*LineSpacing, error) {
	var ls *LineSpacing
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "spcPts":
				if n, err := strconv.Atoi(attr(t, "val")); err == nil {
					ls = &LineSpacing{Points: float64(n) / 100}
				}
			case "spcPct":
				if n, err := strconv.Atoi(attr(t, "val")); err == nil {
					ls = &LineSpacing{Multiple: float64(n) / 100000}
				}
			}
			if err := skipElement(dec); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == container {
				return ls, nil
			}
		}
	}
}

func parseRun(dec *xml.Decoder, container string) (*TextRun, error) {
	run := &TextRun{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := parseRPr(dec, t, &run.Font); err != nil {
					return nil, err
				}
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, err
				}
				run.Text += text
			default:
				if err := skipElement(dec); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == container {
				return run, nil
			}
		}
	}
}

func parseRPr(dec *xml.Decoder, start xml.StartElement, f *Font) error {
	if v := attr(start, "sz"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Size = float64(n) / 100
		}
	}
	f.Bold = attr(start, "b") == "1"
	f.Italic = attr(start, "i") == "1"
	if v := attr(start, "u"); v != "" && v != "none" {
		f.Underline = true
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "solidFill":
				rgb, theme, err := parseFillColor(dec)
				if err != nil {
					return err
				}
				f.Color = rgb
				f.ThemeColor = theme
			case "latin":
				f.Name = attr(t, "typeface")
				if err := skipElement(dec); err != nil {
					return err
				}
			default:
				if err := skipElement(dec); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "rPr" {
				return nil
			}
		}
	}
}

// skipElement consumes the remainder of the element whose start tag was
// just read.
func skipElement(dec *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrEMU(se xml.StartElement, name string) EMU {
	return parseEMU(attr(se, name))
}

func parseEMU(v string) EMU {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
