package ocr

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

// Word is a single recognized token with its pixel bounding box on the page
// image it came from.
type Word struct {
	Text   string
	Left   int
	Top    int
	Width  int
	Height int
	Conf   float64
}

// Words runs tesseract in TSV mode against a page image and returns the
// word-level boxes. Low-confidence and empty tokens are dropped.
func (e *Extractor) Words(ctx context.Context, imgPath string) ([]Word, error) {
	args := []string{imgPath, "stdout", "-l", e.cfg.TesseractLang, "--psm", "6", "tsv"}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	stdout, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, common.WrapError(common.ErrInternal, fmt.Sprintf("tesseract tsv %s: %s", filepath.Base(imgPath), truncate(string(stderr), 200)), err)
	}
	return ParseTSV(string(stdout)), nil
}

// ParseTSV decodes tesseract's TSV output. Columns are
// level page block par line word left top width height conf text.
func ParseTSV(tsv string) []Word {
	var words []Word
	lines := strings.Split(tsv, "\n")
	for i, line := range lines {
		if i == 0 { // header row
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		left, err1 := strconv.Atoi(cols[6])
		top, err2 := strconv.Atoi(cols[7])
		width, err3 := strconv.Atoi(cols[8])
		height, err4 := strconv.Atoi(cols[9])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		words = append(words, Word{
			Text:   text,
			Left:   left,
			Top:    top,
			Width:  width,
			Height: height,
			Conf:   conf,
		})
	}
	return words
}

// ImageSize returns the pixel dimensions of a PNG page image without decoding
// the full raster.
func ImageSize(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, common.WrapError(common.ErrInternal, "open page image", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, common.WrapError(common.ErrInternal, "decode page image header", err)
	}
	return cfg.Width, cfg.Height, nil
}
