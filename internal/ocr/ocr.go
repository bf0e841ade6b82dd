package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned sheets, default 200
	MaxPages      int    // 0 = no limit

	TessdataDir string
}

type ExtractionResult struct {
	Text     string // upper-cased full document text
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// Extract returns the full text of a certification sheet. The embedded text
// layer is preferred when it looks like a real sheet (born-digital PDFs keep
// codes like T-3 intact that raster OCR mangles); otherwise every page is
// rasterized and recognized.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()

	txt, pages, warns, err := e.pdfToText(ctx, path)
	if err == nil && LooksLikeSheet(txt) {
		e.logger.Debug("using embedded text layer", "path", path, "pages", pages)
		return ExtractionResult{
			Text:     strings.ToUpper(txt),
			Pages:    pages,
			Method:   "pdf-text",
			Duration: time.Since(start),
			Warnings: warns,
		}, nil
	}
	if err != nil {
		warns = append(warns, err.Error())
	}

	txt, pages, w2, err := e.pdfToOCR(ctx, path)
	warns = append(warns, w2...)
	if err != nil {
		return ExtractionResult{Warnings: warns}, err
	}
	return ExtractionResult{
		Text:     strings.ToUpper(txt),
		Pages:    pages,
		Method:   "pdf-ocr",
		Duration: time.Since(start),
		Warnings: warns,
	}, nil
}
