// Package ooxml unpacks, repacks and validates Office Open XML
// archives (.docx, .pptx, .xlsx). Unpacked trees hold pretty-printed
// XML suitable for hand editing; packing condenses the XML back and
// rebuilds a deflated zip.
package ooxml

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	maxArchiveEntrySize = 50 * 1024 * 1024
	maxArchiveTotalSize = 200 * 1024 * 1024
	maxArchiveEntries   = 10000
)

var validExtensions = map[string]bool{
	".docx": true,
	".pptx": true,
	".xlsx": true,
}

// DocumentType returns the lowercased extension of an Office document
// path, or an error when the format is not supported.
func DocumentType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !validExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q, expected .docx, .pptx or .xlsx", ext)
	}
	return ext, nil
}

// UnpackResult describes what Unpack produced.
type UnpackResult struct {
	OutputDir     string
	FileCount     int
	FormattedXML  int
	RSIDSuggested string // .docx only, fresh revision save ID for edits
}

// Unpack extracts an Office document into outputDir and pretty-prints
// every XML part in place.
func Unpack(officeFile, outputDir string) (*UnpackResult, error) {
	ext, err := DocumentType(officeFile)
	if err != nil {
		return nil, err
	}
	zr, err := zip.OpenReader(officeFile)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", officeFile, err)
	}
	defer zr.Close()

	if len(zr.File) > maxArchiveEntries {
		return nil, fmt.Errorf("archive has %d entries, limit is %d", len(zr.File), maxArchiveEntries)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	res := &UnpackResult{OutputDir: outputDir}
	var total uint64
	for _, f := range zr.File {
		if f.UncompressedSize64 > maxArchiveEntrySize {
			return nil, fmt.Errorf("entry %s exceeds size limit", f.Name)
		}
		total += f.UncompressedSize64
		if total > maxArchiveTotalSize {
			return nil, fmt.Errorf("archive exceeds total size limit")
		}
		dest, err := securePath(outputDir, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		if err := extractEntry(f, dest); err != nil {
			return nil, err
		}
		res.FileCount++
		if isXMLPart(f.Name) {
			if formatPartInPlace(dest) {
				res.FormattedXML++
			}
		}
	}

	if ext == ".docx" {
		res.RSIDSuggested = newRSID()
	}
	return res, nil
}

// securePath joins an archive entry name under root, rejecting
// traversal outside it.
func securePath(root, name string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(name))
	if rel, err := filepath.Rel(root, dest); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("entry %s escapes output directory", name)
	}
	return dest, nil
}

func extractEntry(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, io.LimitReader(rc, maxArchiveEntrySize+1)); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

func isXMLPart(name string) bool {
	return strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels")
}

// formatPartInPlace pretty-prints an XML file. Unparseable parts stay
// as extracted.
func formatPartInPlace(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if !wellFormed(data) {
		return false
	}
	pretty := PrettyPrint(data)
	if err := os.WriteFile(path, pretty, 0o644); err != nil {
		return false
	}
	return true
}

// newRSID returns an 8-hex-digit revision save ID. Word expects a
// fresh rsid per editing session when tracked changes are in play.
func newRSID() string {
	id := uuid.New()
	return strings.ToUpper(fmt.Sprintf("%02x%02x%02x%02x", id[0], id[1], id[2], id[3]))
}
