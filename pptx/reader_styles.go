package pptx

import (
	"encoding/xml"
	"io"
	"strconv"
)

// parseMasterStyles pulls the level-1 default font sizes out of a slide
// master's txStyles block. Errors are swallowed: a master that cannot
// be parsed simply yields zero defaults and callers fall back to the
// documented 14pt body size.
func parseMasterStyles(data []byte) MasterStyles {
	var styles MasterStyles
	dec := newXMLDecoder(data)

	// Which of titleStyle/bodyStyle/otherStyle we are inside, and
	// whether the current pPr is the level-1 entry.
	var block string
	var inLvl1 bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return styles
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "titleStyle", "bodyStyle", "otherStyle":
				block = t.Name.Local
			case "lvl1pPr":
				inLvl1 = block != ""
			case "defRPr":
				if !inLvl1 {
					continue
				}
				sz := attr(t, "sz")
				if sz == "" {
					continue
				}
				n, err := strconv.Atoi(sz)
				if err != nil {
					continue
				}
				pt := float64(n) / 100
				switch block {
				case "titleStyle":
					styles.TitleSize = pt
				case "bodyStyle":
					styles.BodySize = pt
				case "otherStyle":
					styles.OtherSize = pt
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "titleStyle", "bodyStyle", "otherStyle":
				block = ""
			case "lvl1pPr":
				inLvl1 = false
			}
		}
	}
	return styles
}
