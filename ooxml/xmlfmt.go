package ooxml

import (
	"bytes"
	"strings"
)

// The formatter works at the raw tag level rather than through an XML
// object model: OOXML parts lean heavily on namespace prefixes that a
// decode/re-encode round trip would rewrite, and byte fidelity of text
// content matters when the result gets packed again.

type segKind int

const (
	segTag segKind = iota
	segText
)

type segment struct {
	kind segKind
	data string
}

// splitMarkup slices raw XML into tag and text segments. Quoted
// attribute values may contain '>', so tag scanning honors quotes.
func splitMarkup(data []byte) []segment {
	var segs []segment
	s := string(data)
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			segs = append(segs, segment{segText, s})
			break
		}
		if lt > 0 {
			segs = append(segs, segment{segText, s[:lt]})
			s = s[lt:]
		}
		end := tagEnd(s)
		if end < 0 {
			segs = append(segs, segment{segText, s})
			break
		}
		segs = append(segs, segment{segTag, s[:end+1]})
		s = s[end+1:]
	}
	return segs
}

func tagEnd(s string) int {
	if strings.HasPrefix(s, "<!--") {
		if i := strings.Index(s, "-->"); i >= 0 {
			return i + 2
		}
		return -1
	}
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			return i
		}
	}
	return -1
}

func isCloseTag(tag string) bool { return strings.HasPrefix(tag, "</") }

func isSelfClosing(tag string) bool { return strings.HasSuffix(tag, "/>") }

func isDeclOrComment(tag string) bool {
	return strings.HasPrefix(tag, "<?") || strings.HasPrefix(tag, "<!")
}

// tagName extracts the (possibly prefixed) element name from a tag.
func tagName(tag string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(tag, "</"), "<")
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case ' ', '\t', '\r', '\n', '>', '/':
			return name[:i]
		}
	}
	return name
}

// isTextElement reports whether an element carries document text whose
// whitespace must survive condensing (w:t, a:t and friends).
func isTextElement(name string) bool {
	return strings.HasSuffix(name, ":t")
}

// PrettyPrint reformats markup with two-space indentation, one tag per
// line. Elements holding only text stay on a single line so their
// content is not polluted with indentation.
func PrettyPrint(data []byte) []byte {
	segs := splitMarkup(data)
	var out bytes.Buffer
	depth := 0
	indent := func() {
		for i := 0; i < depth; i++ {
			out.WriteString("  ")
		}
	}

	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		if seg.kind == segText {
			if strings.TrimSpace(seg.data) == "" {
				continue
			}
			indent()
			out.WriteString(strings.TrimSpace(seg.data))
			out.WriteByte('\n')
			continue
		}
		tag := seg.data
		switch {
		case isDeclOrComment(tag):
			indent()
			out.WriteString(tag)
			out.WriteByte('\n')
		case isCloseTag(tag):
			depth--
			if depth < 0 {
				depth = 0
			}
			indent()
			out.WriteString(tag)
			out.WriteByte('\n')
		case isSelfClosing(tag):
			indent()
			out.WriteString(tag)
			out.WriteByte('\n')
		default:
			// Inline a pure text element: <open>text</close>.
			if i+2 < len(segs) &&
				segs[i+1].kind == segText &&
				segs[i+2].kind == segTag &&
				isCloseTag(segs[i+2].data) &&
				tagName(segs[i+2].data) == tagName(tag) {
				indent()
				out.WriteString(tag)
				out.WriteString(segs[i+1].data)
				out.WriteString(segs[i+2].data)
				out.WriteByte('\n')
				i += 2
				continue
			}
			indent()
			out.WriteString(tag)
			out.WriteByte('\n')
			depth++
		}
	}
	return out.Bytes()
}

// Condense strips the whitespace pretty-printing introduced: comments
// and whitespace-only text nodes are dropped, except inside text
// elements, whose content passes through byte for byte.
func Condense(data []byte) []byte {
	segs := splitMarkup(data)
	var out bytes.Buffer
	var stack []string

	for _, seg := range segs {
		if seg.kind == segText {
			inText := len(stack) > 0 && isTextElement(stack[len(stack)-1])
			if !inText && strings.TrimSpace(seg.data) == "" {
				continue
			}
			out.WriteString(seg.data)
			continue
		}
		tag := seg.data
		switch {
		case strings.HasPrefix(tag, "<!--"):
			// dropped
		case isDeclOrComment(tag):
			out.WriteString(tag)
		case isCloseTag(tag):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			out.WriteString(tag)
		case isSelfClosing(tag):
			out.WriteString(tag)
		default:
			stack = append(stack, tagName(tag))
			out.WriteString(tag)
		}
	}
	return out.Bytes()
}
