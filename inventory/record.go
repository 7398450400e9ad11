// Package inventory extracts a deterministic, JSON-serializable text
// inventory from a presentation: absolute shape geometry, effective
// paragraph formatting, estimated text overflow and pairwise shape
// overlap.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ParagraphRecord is the collapsed view of one paragraph: its text plus
// the effective style taken from the first run.
type ParagraphRecord struct {
	Text        string   `json:"text"`
	Bullet      bool     `json:"bullet,omitempty"`
	Level       *int     `json:"level,omitempty"`
	Alignment   string   `json:"alignment,omitempty"`
	SpaceBefore *float64 `json:"space_before,omitempty"`
	SpaceAfter  *float64 `json:"space_after,omitempty"`
	FontName    string   `json:"font_name,omitempty"`
	FontSize    *float64 `json:"font_size,omitempty"`
	Bold        bool     `json:"bold,omitempty"`
	Italic      bool     `json:"italic,omitempty"`
	Underline   bool     `json:"underline,omitempty"`
	Color       string   `json:"color,omitempty"`
	ThemeColor  string   `json:"theme_color,omitempty"`
	LineSpacing *float64 `json:"line_spacing,omitempty"`
}

// FrameOverflow reports estimated text overflow past the shape's own
// box, in inches.
type FrameOverflow struct {
	OverflowBottom float64 `json:"overflow_bottom"`
}

// SlideOverflow reports shape extent past the slide canvas, in inches
// per edge.
type SlideOverflow struct {
	OverflowRight  float64 `json:"overflow_right,omitempty"`
	OverflowBottom float64 `json:"overflow_bottom,omitempty"`
}

// Overflow groups the two overflow kinds. Either member may be nil.
type Overflow struct {
	Frame *FrameOverflow `json:"frame,omitempty"`
	Slide *SlideOverflow `json:"slide,omitempty"`
}

// Overlap carries the mapping of overlapping shape id to intersection
// area in square inches.
type Overlap struct {
	OverlappingShapes overlapMap `json:"overlapping_shapes"`
}

// ShapeRecord is the inventoried view of one shape. Geometry is in
// inches rounded to two decimals. Identifiers are positional within
// the slide, in reading order.
type ShapeRecord struct {
	ID              string            `json:"-"`
	Left            float64           `json:"left"`
	Top             float64           `json:"top"`
	Width           float64           `json:"width"`
	Height          float64           `json:"height"`
	PlaceholderType string            `json:"placeholder_type,omitempty"`
	DefaultFontSize *float64          `json:"default_font_size,omitempty"`
	Overflow        *Overflow         `json:"overflow,omitempty"`
	Overlap         *Overlap          `json:"overlap,omitempty"`
	Warnings        []string          `json:"warnings,omitempty"`
	Paragraphs      []ParagraphRecord `json:"paragraphs"`
}

// HasIssues reports whether the record carries any overflow, overlap or
// warning, the issues_only selection criterion.
func (r *ShapeRecord) HasIssues() bool {
	return r.Overflow != nil || r.Overlap != nil || len(r.Warnings) > 0
}

// SlideEntry pairs a slide id with its records in reading order.
type SlideEntry struct {
	ID     string
	Shapes []*ShapeRecord
}

// Inventory is the full extraction result. Slides appear in document
// order; shape records in reading order. Serialization preserves both,
// so repeated extraction of an unchanged file is byte-identical.
type Inventory struct {
	Slides []*SlideEntry
}

// MarshalJSON renders the nested slide-id/shape-id mapping with keys in
// insertion order rather than the lexicographic order a Go map would
// give (which would put shape-10 before shape-2).
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, slide := range inv.Slides {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(slide.ID)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.WriteByte('{')
		for j, rec := range slide.Shapes {
			if j > 0 {
				b.WriteByte(',')
			}
			rkey, err := json.Marshal(rec.ID)
			if err != nil {
				return nil, err
			}
			b.Write(rkey)
			b.WriteByte(':')
			body, err := json.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("marshal %s/%s: %w", slide.ID, rec.ID, err)
			}
			b.Write(body)
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// overlapMap marshals its keys in insertion order.
type overlapMap struct {
	keys   []string
	values map[string]float64
}

func newOverlapMap() overlapMap {
	return overlapMap{values: make(map[string]float64)}
}

func (m *overlapMap) set(key string, area float64) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = area
}

// Get returns the recorded area for a shape id.
func (m overlapMap) Get(key string) (float64, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of overlapping shapes recorded.
func (m overlapMap) Len() int { return len(m.keys) }

func (m overlapMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// round2 rounds to two decimals, the precision of every exported
// geometry value.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
