package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

// pdfToText extracts the embedded text layer with poppler's pdftotext.
func (e *Extractor) pdfToText(ctx context.Context, path string) (string, int, []string, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	stdout, stderr, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return "", 0, nil, common.WrapError(common.ErrInternal, fmt.Sprintf("pdftotext %s: %s", filepath.Base(path), truncate(string(stderr), 200)), err)
	}
	var warns []string
	if len(stderr) > 0 {
		warns = append(warns, truncate(string(stderr), 200))
	}
	txt := string(stdout)
	pages := strings.Count(txt, "\f")
	if pages == 0 && len(strings.TrimSpace(txt)) > 0 {
		pages = 1
	}
	return txt, pages, warns, nil
}

// pdfToOCR rasterizes every page and runs tesseract on each image.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (string, int, []string, error) {
	images, cleanup, err := e.RasterizePages(ctx, path)
	if err != nil {
		return "", 0, nil, err
	}
	defer cleanup()

	var warns []string
	var sb strings.Builder
	for i, img := range images {
		text, stderr, err := e.ocrImage(ctx, img)
		if err != nil {
			return "", 0, warns, common.WrapError(common.ErrInternal, fmt.Sprintf("tesseract page %d of %s", i+1, filepath.Base(path)), err)
		}
		if len(stderr) > 0 {
			warns = append(warns, truncate(string(stderr), 200))
		}
		if i > 0 {
			sb.WriteString("\f")
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), len(images), warns, nil
}

// RasterizePages renders each page of the PDF to a PNG under a temp dir and
// returns the image paths in page order. Callers must invoke cleanup.
func (e *Extractor) RasterizePages(ctx context.Context, path string) ([]string, func(), error) {
	dir, err := os.MkdirTemp("", "seapay-pages-*")
	if err != nil {
		return nil, nil, common.WrapError(common.ErrInternal, "create raster temp dir", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	if _, stderr, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		cleanup()
		return nil, nil, common.WrapError(common.ErrInternal, fmt.Sprintf("pdftoppm %s: %s", filepath.Base(path), truncate(string(stderr), 200)), err)
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(matches) == 0 {
		cleanup()
		return nil, nil, common.NewAppError("OCR_ERROR", fmt.Sprintf("pdftoppm produced no pages for %s", filepath.Base(path)), common.ErrInternal)
	}
	// pdftoppm zero-pads page numbers so lexical order is page order
	sort.Strings(matches)
	return matches, cleanup, nil
}

func (e *Extractor) ocrImage(ctx context.Context, imgPath string) (string, []byte, error) {
	args := []string{imgPath, "stdout", "-l", e.cfg.TesseractLang, "--psm", "6"}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	stdout, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", stderr, err
	}
	return string(stdout), stderr, nil
}
