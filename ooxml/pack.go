package ooxml

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const probeTimeout = 30 * time.Second

// ProbeError reports a failed LibreOffice conversion probe on a
// freshly packed document.
type ProbeError struct {
	Document string
	Output   string
	Err      error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("document %s failed conversion probe: %v", e.Document, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// PackOptions controls Pack behavior.
type PackOptions struct {
	// Probe runs the packed file through a headless LibreOffice
	// conversion as a corruption check. A missing soffice binary is
	// not an error.
	Probe bool
	// Force keeps the output file even when the probe fails.
	Force bool
}

// Pack rebuilds an Office document from an unpacked directory tree.
// XML parts are condensed back to single-line form before zipping.
func Pack(inputDir, outputFile string, opts PackOptions) error {
	if _, err := DocumentType(outputFile); err != nil {
		return err
	}
	info, err := os.Stat(inputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", inputDir)
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if err := writeArchive(inputDir, outputFile); err != nil {
		return err
	}

	if opts.Probe {
		if err := probeConversion(outputFile); err != nil {
			if !opts.Force {
				os.Remove(outputFile)
			}
			return err
		}
	}
	return nil
}

func writeArchive(inputDir, outputFile string) error {
	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		return addArchiveEntry(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func addArchiveEntry(zw *zip.Writer, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isXMLPart(name) && wellFormed(data) {
		data = Condense(data)
	}
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// conversion filters per document type, matching what Office itself
// would accept.
var probeFilters = map[string]string{
	".docx": "html:HTML",
	".pptx": "html:impress_html_Export",
	".xlsx": "html:HTML (StarCalc)",
}

// probeConversion asks headless LibreOffice to convert the document to
// HTML. If the conversion produces no output the archive is almost
// certainly corrupt.
func probeConversion(outputFile string) error {
	ext, err := DocumentType(outputFile)
	if err != nil {
		return err
	}
	soffice, err := exec.LookPath("soffice")
	if err != nil {
		// No LibreOffice installed, nothing to check against.
		return nil
	}

	tmp, err := os.MkdirTemp("", "ooxml-probe-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, soffice,
		"--headless", "--convert-to", probeFilters[ext],
		"--outdir", tmp, outputFile)
	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ProbeError{Document: outputFile, Output: string(out), Err: context.DeadlineExceeded}
	}
	if err != nil {
		return &ProbeError{Document: outputFile, Output: string(out), Err: err}
	}

	stem := strings.TrimSuffix(filepath.Base(outputFile), ext)
	if _, err := os.Stat(filepath.Join(tmp, stem+".html")); err != nil {
		return &ProbeError{Document: outputFile, Output: string(out), Err: errors.New("conversion produced no output")}
	}
	return nil
}
