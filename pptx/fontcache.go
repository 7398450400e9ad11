package pptx

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

const (
	maxFontScanDepth = 3
	maxFontFileSize  = 20 * 1024 * 1024
)

type faceKey struct {
	name string
	size float64
	dpi  float64
}

// FontCache resolves font names to parsed fonts and memoizes the faces
// built from them. Safe for concurrent use.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string
	fonts   map[string]*opentype.Font
	faces   map[faceKey]font.Face
	scanned bool
}

// NewFontCache creates a cache over the platform font directories.
func NewFontCache() *FontCache {
	return &FontCache{
		dirs:  systemFontDirs(),
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// NewFontCacheDirs creates a cache over explicit directories, used by
// tests.
func NewFontCacheDirs(dirs []string) *FontCache {
	return &FontCache{
		dirs:  dirs,
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

func systemFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{`C:\Windows\Fonts`}
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(os.Getenv("HOME"), "Library/Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(os.Getenv("HOME"), ".fonts"), filepath.Join(os.Getenv("HOME"), ".local/share/fonts")}
	}
}

// MeasureFace returns an unhinted face for text measurement at the
// given size and DPI. When no matching font exists on the host, the
// fixed 7x13 bitmap face is returned so measurement always succeeds.
func (c *FontCache) MeasureFace(name string, sizePt, dpi float64) font.Face {
	f := c.findFont(name)
	if f == nil {
		for _, alt := range []string{"arial", "helvetica", "dejavu sans", "liberation sans", "noto sans"} {
			if f = c.findFont(alt); f != nil {
				break
			}
		}
	}
	if f == nil {
		return basicfont.Face7x13
	}

	key := faceKey{name: normalizeFontName(name), size: sizePt, dpi: dpi}
	c.mu.RLock()
	face, ok := c.faces[key]
	c.mu.RUnlock()
	if ok {
		return face
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	c.mu.Lock()
	c.faces[key] = face
	c.mu.Unlock()
	return face
}

// MeasureString returns the advance width of s in pixels for the face.
func MeasureString(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / float64(fixed.I(1))
}

// findFont resolves a font name through the candidate variants and a
// final substring pass over everything registered.
func (c *FontCache) findFont(name string) *opentype.Font {
	if name == "" {
		return nil
	}
	c.ensureScanned()

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, cand := range nameCandidates(name) {
		if f, ok := c.fonts[cand]; ok {
			return f
		}
	}
	needle := normalizeFontName(name)
	for key, f := range c.fonts {
		if strings.Contains(key, needle) {
			return f
		}
	}
	return nil
}

// nameCandidates generates the lookup variants for a requested name:
// exact, lowercased, space-stripped and hyphenated.
func nameCandidates(name string) []string {
	base := normalizeFontName(name)
	return []string{
		base,
		strings.ReplaceAll(base, " ", ""),
		strings.ReplaceAll(base, " ", "-"),
	}
}

func normalizeFontName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

// LoadFont registers a font file under its family names plus its file
// stem.
func (c *FontCache) LoadFont(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat font %s: %w", path, err)
	}
	if st.Size() > maxFontFileSize {
		return fmt.Errorf("font %s exceeds %d bytes", path, int64(maxFontFileSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerFontData(data, stem)
}

// registerFontData parses font bytes (single font or collection) and
// indexes each font under its family name, full name and the given
// stem. Caller holds the lock.
func (c *FontCache) registerFontData(data []byte, stem string) error {
	if isCollection(data) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return fmt.Errorf("parse font collection: %w", err)
		}
		for i := 0; i < coll.NumFonts(); i++ {
			f, err := coll.Font(i)
			if err != nil {
				continue
			}
			c.indexFont(f, "")
		}
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	c.indexFont(f, stem)
	return nil
}

func isCollection(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "ttcf"
}

// indexFont records a parsed font under its naming-table names. The
// first registration for a key wins so regular weights are not
// displaced by styled variants scanned later.
func (c *FontCache) indexFont(f *opentype.Font, stem string) {
	var buf sfnt.Buffer
	keys := make([]string, 0, 3)
	if stem != "" {
		keys = append(keys, normalizeFontName(stem))
	}
	if fam, err := f.Name(&buf, sfnt.NameIDFamily); err == nil && fam != "" {
		keys = append(keys, normalizeFontName(fam))
	}
	if full, err := f.Name(&buf, sfnt.NameIDFull); err == nil && full != "" {
		keys = append(keys, normalizeFontName(full))
	}
	for _, k := range keys {
		if _, exists := c.fonts[k]; !exists {
			c.fonts[k] = f
		}
	}
}

func (c *FontCache) ensureScanned() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanned {
		return
	}
	c.scanned = true
	for _, dir := range c.dirs {
		c.scanDir(dir, 0)
	}
}

// scanDir walks a font directory a bounded number of levels deep,
// registering every parseable font file. Caller holds the lock.
func (c *FontCache) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			c.scanDir(full, depth+1)
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".ttf", ".otf", ".ttc", ".otc":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		// Unparseable files are skipped, not fatal.
		_ = c.registerFontData(data, stem)
	}
}
