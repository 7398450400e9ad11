package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	convertTimeout = 120 * time.Second
	rasterTimeout  = 300 * time.Second
)

// RenderError wraps a failure of one of the external rendering tools.
type RenderError struct {
	Tool   string
	Output string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// renderPDF converts a deck to PDF with headless LibreOffice and
// returns the PDF path.
func renderPDF(ctx context.Context, pptxPath, workDir string) (string, error) {
	soffice, err := exec.LookPath("soffice")
	if err != nil {
		return "", &RenderError{Tool: "soffice", Err: fmt.Errorf("not installed: %w", err)}
	}
	cctx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, soffice,
		"--headless", "--convert-to", "pdf", "--outdir", workDir, pptxPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", &RenderError{Tool: "soffice", Output: string(out), Err: err}
	}

	stem := strings.TrimSuffix(filepath.Base(pptxPath), filepath.Ext(pptxPath))
	pdf := filepath.Join(workDir, stem+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return "", &RenderError{Tool: "soffice", Output: string(out), Err: fmt.Errorf("no PDF produced: %w", err)}
	}
	return pdf, nil
}

// renderPages rasterizes every PDF page to PNG at renderDPI and
// returns the page files in order. pdftoppm is preferred, ImageMagick
// convert is the fallback.
func renderPages(ctx context.Context, pdfPath, workDir string) ([]string, error) {
	pages, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", pdfPath, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("PDF %s has no pages", pdfPath)
	}

	cctx, cancel := context.WithTimeout(ctx, rasterTimeout)
	defer cancel()

	prefix := filepath.Join(workDir, "page")
	if pdftoppm, err := exec.LookPath("pdftoppm"); err == nil {
		cmd := exec.CommandContext(cctx, pdftoppm,
			"-png", "-r", fmt.Sprint(renderDPI), pdfPath, prefix)
		if out, err := cmd.CombinedOutput(); err != nil {
			return nil, &RenderError{Tool: "pdftoppm", Output: string(out), Err: err}
		}
		return collectPages(workDir, pages)
	}

	convert, err := exec.LookPath("convert")
	if err != nil {
		return nil, &RenderError{Tool: "pdftoppm", Err: fmt.Errorf("neither pdftoppm nor convert installed")}
	}
	cmd := exec.CommandContext(cctx, convert,
		"-density", fmt.Sprint(renderDPI), pdfPath, prefix+"-%03d.png")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &RenderError{Tool: "convert", Output: string(out), Err: err}
	}
	return collectPages(workDir, pages)
}

// collectPages globs the rendered page files. Tool numbering schemes
// differ, so ordering relies on the zero-padded names both tools emit.
func collectPages(workDir string, expected int) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(workDir, "page*.png"))
	if err != nil {
		return nil, err
	}
	if len(matches) != expected {
		return nil, fmt.Errorf("rendered %d pages, expected %d", len(matches), expected)
	}
	sort.Strings(matches)
	return matches, nil
}
