package annotate

import (
	"regexp"
	"strings"

	"github.com/night-owl-018/seapay-certifier/constants"
)

var (
	printedTotal = regexp.MustCompile(`(?is)TOTAL\s+SEA\s+PAY\s+DAYS\D*?(\d+)`)
	digitsOnly   = regexp.MustCompile(`\D`)
	numeral      = regexp.MustCompile(`^\d+$`)
)

// ExtractPrintedTotal pulls the printed total-days figure out of sheet text.
// Returns "" when no figure follows the label.
func ExtractPrintedTotal(text string) string {
	m := printedTotal.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// CleanDigits strips everything but digits.
func CleanDigits(s string) string {
	return strings.TrimSpace(digitsOnly.ReplaceAllString(s, ""))
}

// IsTotalRow reports whether a clustered row is the printed total line: all
// label keywords must appear.
func IsTotalRow(text string) bool {
	for _, kw := range constants.TotalRowKeywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}
