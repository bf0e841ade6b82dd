package extract

import (
	"regexp"
	"time"

	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

// Period is the reporting window printed on a certification sheet. It drives
// year inference for schedule rows that omit the year.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) IsZero() bool {
	return p.Start.IsZero() || p.End.IsZero()
}

// Reported renders the window for the review ledger. Zero when the sheet
// carried no parseable range.
func (p Period) Reported() ledger.ReportingPeriod {
	if p.IsZero() {
		return ledger.ReportingPeriod{}
	}
	return ledger.ReportingPeriod{
		From: p.Start.Format("01/02/2006"),
		To:   p.End.Format("01/02/2006"),
	}
}

var (
	periodRange  = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:-|–|TO|THRU|THROUGH)\s*(\d{1,2}/\d{1,2}/\d{2,4})`)
	filenameYear = regexp.MustCompile(`(20\d{2})`)
)

// FindPeriod scans sheet text for the first full date range. The reporting
// period header is the only place two full dates appear side by side.
func FindPeriod(text string) Period {
	m := periodRange.FindStringSubmatch(text)
	if m == nil {
		return Period{}
	}
	start, err1 := ledger.ParseDate(m[1])
	end, err2 := ledger.ParseDate(m[2])
	if err1 != nil || err2 != nil || end.Before(start.Time) {
		return Period{}
	}
	return Period{Start: start.Time, End: end.Time}
}

// YearFromFilename pulls a 4-digit year out of the PDF file name, falling
// back to the current year. Used when the sheet has no reporting period.
func YearFromFilename(name string, now time.Time) int {
	if m := filenameYear.FindString(name); m != "" {
		y := 0
		for _, c := range m {
			y = y*10 + int(c-'0')
		}
		return y
	}
	return now.Year()
}

// yearFor resolves the year for a month/day with no printed year. A schedule
// month earlier than the period's start month means the calendar rolled over.
func (p Period) yearFor(month int, fallback int) int {
	if p.IsZero() {
		return fallback
	}
	if month < int(p.Start.Month()) {
		return p.End.Year()
	}
	return p.Start.Year()
}
