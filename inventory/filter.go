package inventory

import (
	"strings"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// qualifies decides whether a text shape carries inventoriable content.
// Slide-number placeholders and purely numeric footers are automatic
// chrome, not content.
func qualifies(ts *pptx.TextShape) bool {
	text := strings.TrimSpace(ts.Text())
	if text == "" {
		return false
	}
	ph := ts.Placeholder
	if ph == nil {
		return true
	}
	if ph.Type == pptx.PlaceholderSlideNumber {
		return false
	}
	if ph.Type == pptx.PlaceholderFooter && isNumeric(text) {
		return false
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
