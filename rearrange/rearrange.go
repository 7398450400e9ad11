// Package rearrange rebuilds a deck from a 0-based slide index
// sequence. Repeating an index duplicates the slide, omitting one
// deletes it, and any ordering (including back references like
// "2,0,2") yields exactly the requested output order.
package rearrange

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shjanjua/pptx-mcp-server/pptx"
)

// ParseSequence parses a comma-separated list of 0-based slide
// indices. Whitespace around entries is tolerated.
func ParseSequence(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	seq := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty entry in slide sequence %q", s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("slide sequence entry %q is not an integer", part)
		}
		if n < 0 {
			return nil, fmt.Errorf("slide sequence entry %d is negative", n)
		}
		seq = append(seq, n)
	}
	return seq, nil
}

// Apply rebuilds the deck so slide i of the result is source slide
// seq[i]. The first use of a source slide moves it; every repeat gets
// a deep copy, so later edits to one duplicate never leak into
// another.
func Apply(pres *pptx.Presentation, seq []int) error {
	if len(seq) == 0 {
		return fmt.Errorf("slide sequence is empty")
	}
	count := pres.SlideCount()
	for _, idx := range seq {
		if idx >= count {
			return fmt.Errorf("slide index %d out of range (presentation has %d slides)", idx, count)
		}
	}

	source := pres.Slides()
	used := make(map[int]bool, len(seq))
	rebuilt := make([]*pptx.Slide, 0, len(seq))
	for _, idx := range seq {
		if !used[idx] {
			used[idx] = true
			rebuilt = append(rebuilt, source[idx])
			continue
		}
		dup, err := source[idx].Clone()
		if err != nil {
			return fmt.Errorf("duplicate slide %d: %w", idx, err)
		}
		rebuilt = append(rebuilt, dup)
	}
	pres.ReplaceSlides(rebuilt)
	return nil
}

// ApplyFile opens a deck, applies the sequence and saves the result.
func ApplyFile(inputPath, sequence, outputPath string) error {
	seq, err := ParseSequence(sequence)
	if err != nil {
		return err
	}
	pres, err := pptx.Open(inputPath)
	if err != nil {
		return fmt.Errorf("rearrange slides: %w", err)
	}
	if err := Apply(pres, seq); err != nil {
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return pres.Save(outputPath)
}
