package annotate

import (
	"sort"
	"strings"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/ocr"
)

// Geometry constants in PDF points, Letter page, origin top-left.
const (
	pageWidthPt  = 612.0
	pageHeightPt = 792.0

	rowGroupTolerance = 5.5 // tokens this close vertically share a row
	yMatchTolerance   = 3.0 // numeral-to-row vertical match window

	strikeXStart = 40.0
	strikeXEnd   = 550.0

	totalFallbackXStart = 260.0
	totalFallbackXEnd   = 300.0

	strikeLineWidth = 0.8
)

// Row is a visual line of recognized text with its vertical center in page
// points measured from the top edge.
type Row struct {
	Page int
	Y    float64
	Text string
	Date string // normalized MM/DD/YYYY, "" when the row carries no date
	Occ  int    // 1-based occurrence among same-date rows, matching extraction
}

// BuildRows clusters one page's word boxes into visual rows. imgHeight is the
// source image height in pixels, used to scale into page points.
func BuildRows(page int, words []ocr.Word, imgHeight int) []Row {
	if imgHeight <= 0 || len(words) == 0 {
		return nil
	}
	scaleY := pageHeightPt / float64(imgHeight)

	type tok struct {
		text string
		y    float64
	}
	tokens := make([]tok, 0, len(words))
	for _, w := range words {
		centerY := (float64(w.Top) + float64(w.Height)/2.0) * scaleY
		tokens = append(tokens, tok{text: strings.ToUpper(w.Text), y: centerY})
	}
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].y < tokens[j].y })

	var rows []Row
	var cur []tok
	lastY := -1.0
	flush := func() {
		if len(cur) == 0 {
			return
		}
		sum := 0.0
		parts := make([]string, 0, len(cur))
		for _, t := range cur {
			sum += t.y
			parts = append(parts, t.text)
		}
		rows = append(rows, Row{
			Page: page,
			Y:    sum / float64(len(cur)),
			Text: strings.Join(parts, " "),
		})
		cur = nil
	}
	for _, t := range tokens {
		if lastY >= 0 && t.y-lastY > rowGroupTolerance {
			flush()
		}
		cur = append(cur, t)
		lastY = t.y
	}
	flush()
	return rows
}

// AssignDates tags rows with the calendar day they mention, testing the OCR
// spelling variants of every date seen on the sheet. Occurrence counters run
// in row order so they line up with the text extraction pass.
func AssignDates(rows []Row, allDates []string) {
	variants := make(map[string][]string, len(allDates))
	for _, d := range allDates {
		variants[d] = DateVariants(d)
	}
	counters := make(map[string]int, len(allDates))

	for i := range rows {
		for _, d := range allDates {
			matched := false
			for _, v := range variants[d] {
				if strings.Contains(rows[i].Text, v) {
					matched = true
					break
				}
			}
			if matched {
				counters[d]++
				rows[i].Date = d
				rows[i].Occ = counters[d]
				break
			}
		}
	}
}

// CollectDates scans word tokens for anything date-shaped and returns the
// normalized set, so auto-striking can consider dates the parser never saw.
func CollectDates(words []ocr.Word) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range words {
		if d := NormalizeTokenDate(w.Text); d != "" {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				out = append(out, d)
			}
		}
	}
	return out
}

// MergeContinuations folds dateless rows that look like event continuations
// into the nearest date row above them, mirroring the multi-line absorption
// done during extraction. Rows must be in page order, top to bottom.
func MergeContinuations(rows []Row) []Row {
	byPage := make(map[int][]int)
	for i := range rows {
		byPage[rows[i].Page] = append(byPage[rows[i].Page], i)
	}

	absorbed := make(map[int]bool)
	for _, idxs := range byPage {
		sort.SliceStable(idxs, func(a, b int) bool { return rows[idxs[a]].Y < rows[idxs[b]].Y })
		curDateRow := -1
		for _, i := range idxs {
			if rows[i].Date != "" {
				curDateRow = i
				continue
			}
			if curDateRow < 0 {
				continue
			}
			if hasContinuationHint(rows[i].Text) {
				rows[curDateRow].Text = strings.TrimSpace(rows[curDateRow].Text + " " + rows[i].Text)
				absorbed[i] = true
			}
		}
	}

	out := rows[:0]
	for i := range rows {
		if !absorbed[i] {
			out = append(out, rows[i])
		}
	}
	return out
}

func hasContinuationHint(text string) bool {
	for _, h := range constants.ContinuationHints {
		if strings.Contains(text, h) {
			return true
		}
	}
	return false
}

// NearestDateRow returns the dated row on page closest in Y to target, or
// nil when the page has no dated rows.
func NearestDateRow(rows []Row, page int, y float64) *Row {
	var best *Row
	bestDelta := 0.0
	for i := range rows {
		if rows[i].Page != page || rows[i].Date == "" {
			continue
		}
		delta := rows[i].Y - y
		if delta < 0 {
			delta = -delta
		}
		if best == nil || delta < bestDelta {
			best = &rows[i]
			bestDelta = delta
		}
	}
	return best
}
