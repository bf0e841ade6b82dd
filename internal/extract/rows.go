package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

// Entry is one dated schedule row lifted from sheet text, before any
// validity decision is made.
type Entry struct {
	Date            ledger.Date
	Raw             string
	Upper           string
	LineIndex       int
	OccurrenceIndex int // 1-based position among same-date rows
}

var dateLead = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?`)

// ParseEntries scans OCR'd sheet text for dated schedule rows. Up to three
// following lines are absorbed into a row when they do not start a new date,
// since the recognizer splits long event text across lines. Rows keep text
// order, and same-date rows get 1-based occurrence indices.
func ParseEntries(text string, period Period, fallbackYear int) []Entry {
	lines := strings.Split(text, "\n")
	var entries []Entry
	occ := make(map[string]int)

	for i, line := range lines {
		m := dateLead.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])

		year := 0
		switch len(m[3]) {
		case 4:
			year, _ = strconv.Atoi(m[3])
		case 2:
			y2, _ := strconv.Atoi(m[3])
			year = 2000 + y2
		default:
			year = period.yearFor(month, fallbackYear)
		}
		if year == 0 || !validDate(year, month, day) {
			continue
		}
		date := ledger.NewDate(year, time.Month(month), day)

		raw := line[len(m[0]):]
		for j := 1; j <= 3 && i+j < len(lines); j++ {
			next := strings.TrimSpace(lines[i+j])
			if dateLead.MatchString(next) {
				break
			}
			raw += " " + next
		}

		cleaned := SanitizeParentheticals(strings.TrimSpace(raw))
		key := date.String()
		occ[key]++
		entries = append(entries, Entry{
			Date:            date,
			Raw:             cleaned,
			Upper:           strings.ToUpper(cleaned),
			LineIndex:       i,
			OccurrenceIndex: occ[key],
		})
	}
	return entries
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(t.Month()) == month && t.Day() == day
}
