package annotate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
	"github.com/night-owl-018/seapay-certifier/internal/ocr"
)

// Request describes one sheet to annotate.
type Request struct {
	InputPath  string
	OutputPath string

	// Rejected carries the events to strike, with their normalized dates and
	// occurrence indices.
	Rejected []ledger.Event

	// OverrideValid lists rows a reviewer forced valid; their dates are never
	// struck. nil means normal processing; non-nil means a rebuild pass.
	OverrideValid []ledger.Event
	Rebuild       bool

	ComputedTotal  int
	ExtractedTotal string // printed figure found during text extraction, may be ""
}

// Renderer draws strike lines and total corrections onto copies of the
// original sheets. Any failure falls back to an unmarked copy so the batch
// never loses a document.
type Renderer struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
	markers   []string
	colorR    int
	colorG    int
	colorB    int
}

func NewRenderer(extractor *ocr.Extractor, strikeColor string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{extractor: extractor, logger: logger, markers: constants.InvalidTextMarkers}
	switch strings.ToLower(strikeColor) {
	case "red":
		r.colorR = 255
	default:
		// black
	}
	return r
}

// SetInvalidMarkers replaces the auto-strike denylist.
func (r *Renderer) SetInvalidMarkers(markers []string) {
	r.markers = markers
}

// MarkSheet produces the annotated copy. Errors and panics from the overlay
// machinery degrade to a byte copy of the original.
func (r *Renderer) MarkSheet(ctx context.Context, req Request) error {
	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("overlay panic: %v", rec)
			}
		}()
		return r.mark(ctx, req)
	}()
	if err != nil {
		r.logger.Warn("marking failed, copying original",
			"file", filepath.Base(req.InputPath), "error", err)
		return copyFile(req.InputPath, req.OutputPath)
	}
	return nil
}

type strikeKey struct {
	page int
	date string
}

func (r *Renderer) mark(ctx context.Context, req Request) error {
	images, cleanup, err := r.extractor.RasterizePages(ctx, req.InputPath)
	if err != nil {
		return err
	}
	defer cleanup()

	// geometry pass: word boxes per page, clustered into rows
	var rows []Row
	pageWords := make([][]ocr.Word, len(images))
	pageScaleX := make([]float64, len(images))
	pageScaleY := make([]float64, len(images))
	dateSet := make(map[string]struct{})
	var allDates []string

	for p, img := range images {
		words, err := r.extractor.Words(ctx, img)
		if err != nil {
			return err
		}
		w, h, err := ocr.ImageSize(img)
		if err != nil {
			return err
		}
		pageWords[p] = words
		pageScaleX[p] = pageWidthPt / float64(w)
		pageScaleY[p] = pageHeightPt / float64(h)
		rows = append(rows, BuildRows(p, words, h)...)
		for _, d := range CollectDates(words) {
			if _, ok := dateSet[d]; !ok {
				dateSet[d] = struct{}{}
				allDates = append(allDates, d)
			}
		}
	}

	AssignDates(rows, allDates)
	rows = MergeContinuations(rows)

	overrideDates := overrideDateSet(req.OverrideValid)

	targets := make(map[string]map[int]bool)
	for _, ev := range req.Rejected {
		d := ev.Date.String()
		if targets[d] == nil {
			targets[d] = make(map[int]bool)
		}
		targets[d][ev.OccurrenceIndex] = true
	}

	// strike registry, one line per (page, date)
	registered := make(map[strikeKey]bool)
	strikes := make(map[int]map[string]float64)
	register := func(page int, date string, y float64) {
		k := strikeKey{page: page, date: date}
		if registered[k] {
			return
		}
		registered[k] = true
		if strikes[page] == nil {
			strikes[page] = make(map[string]float64)
		}
		strikes[page][date] = y
	}

	for i := range rows {
		row := &rows[i]
		if row.Date == "" || row.Occ == 0 {
			continue
		}
		if _, ok := overrideDates[row.Date]; ok {
			continue
		}
		if targets[row.Date][row.Occ] {
			register(row.Page, row.Date, row.Y)
		}
	}

	// safety net: strike any row carrying an invalid-event marker even when
	// the parser missed it, unless its date was forced valid
	for i := range rows {
		row := &rows[i]
		if r.hasInvalidMarker(row.Text) {
			date, y := row.Date, row.Y
			if date == "" {
				if nearest := NearestDateRow(rows, row.Page, row.Y); nearest != nil {
					date, y = nearest.Date, nearest.Y
				} else {
					date = fmt.Sprintf("ROW_%d_%.1f", row.Page, row.Y)
				}
			}
			if _, ok := overrideDates[date]; ok {
				continue
			}
			register(row.Page, date, y)
		}
	}

	total := r.planTotal(req, rows, pageWords, pageScaleX, pageScaleY)

	return r.render(req, len(images), strikes, total)
}

type totalPlan struct {
	page       int
	y          float64
	strikeFrom float64
	strikeTo   float64
	text       string
}

// planTotal decides whether the printed total needs correcting and where the
// correction goes. nil means leave the sheet's total alone.
func (r *Renderer) planTotal(req Request, rows []Row, pageWords [][]ocr.Word, scaleX, scaleY []float64) *totalPlan {
	var totalRow *Row
	for i := range rows {
		if IsTotalRow(rows[i].Text) {
			totalRow = &rows[i]
			break
		}
	}
	if totalRow == nil {
		return nil
	}

	if req.Rebuild && len(req.OverrideValid) == 0 {
		return nil
	}

	// locate the printed numeral's horizontal span on the total row
	startX, endX := totalFallbackXStart, totalFallbackXEnd
	printed := ""
	for _, w := range pageWords[totalRow.Page] {
		text := strings.TrimSpace(w.Text)
		if !numeral.MatchString(text) {
			continue
		}
		centerY := (float64(w.Top) + float64(w.Height)/2.0) * scaleY[totalRow.Page]
		delta := centerY - totalRow.Y
		if delta < 0 {
			delta = -delta
		}
		if delta < yMatchTolerance {
			startX = float64(w.Left) * scaleX[totalRow.Page]
			endX = float64(w.Left+w.Width) * scaleX[totalRow.Page]
			printed = text
			break
		}
	}

	extracted := CleanDigits(req.ExtractedTotal)
	if extracted == "" {
		extracted = CleanDigits(printed)
	}
	computed := strconv.Itoa(req.ComputedTotal)
	if extracted != "" && extracted == computed {
		return nil
	}

	return &totalPlan{
		page:       totalRow.Page,
		y:          totalRow.Y,
		strikeFrom: startX,
		strikeTo:   endX,
		text:       computed,
	}
}

// render imports each original page as a template, overlays that page's
// strike lines plus any total correction, and writes the result atomically.
func (r *Renderer) render(req Request, pageCount int, strikes map[int]map[string]float64, total *totalPlan) error {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 10)
	imp := gofpdi.NewImporter()

	for p := 0; p < pageCount; p++ {
		pdf.AddPage()
		tpl := imp.ImportPage(pdf, req.InputPath, p+1, "/MediaBox")
		imp.UseImportedTemplate(pdf, tpl, 0, 0, pageWidthPt, pageHeightPt)

		pdf.SetLineWidth(strikeLineWidth)
		pdf.SetDrawColor(r.colorR, r.colorG, r.colorB)
		pdf.SetTextColor(r.colorR, r.colorG, r.colorB)

		for _, y := range strikes[p] {
			pdf.Line(strikeXStart, y, strikeXEnd, y)
		}

		if total != nil && total.page == p {
			gap := pdf.GetStringWidth("   ")
			pdf.Line(total.strikeFrom, total.y, total.strikeTo, total.y)
			pdf.Text(total.strikeTo+gap, total.y, total.text)
		}
	}
	if pdf.Err() {
		return fmt.Errorf("compose overlay: %s", pdf.Error())
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return err
	}
	tmp := req.OutputPath + ".tmp"
	if err := pdf.OutputFileAndClose(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, req.OutputPath)
}

func overrideDateSet(rows []ledger.Event) map[string]struct{} {
	set := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		set[r.Date.String()] = struct{}{}
	}
	return set
}

func (r *Renderer) hasInvalidMarker(text string) bool {
	for _, m := range r.markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
