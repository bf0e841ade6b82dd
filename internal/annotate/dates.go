package annotate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/night-owl-018/seapay-certifier/constants"
)

// DateVariants lists the spellings OCR may produce for one calendar day:
// padded and non-padded month/day with 2- or 4-digit years.
func DateVariants(dateStr string) []string {
	dt, err := time.Parse(constants.DateLayout, dateStr)
	if err != nil {
		return []string{dateStr}
	}
	set := map[string]struct{}{
		dateStr: {},
		fmt.Sprintf("%d/%d/%d", dt.Month(), dt.Day(), dt.Year()):           {},
		fmt.Sprintf("%d/%d/%02d", dt.Month(), dt.Day(), dt.Year()%100):     {},
		fmt.Sprintf("%02d/%02d/%02d", dt.Month(), dt.Day(), dt.Year()%100): {},
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}

var tokenDate = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}`)

// NormalizeTokenDate canonicalizes a recognized date token to MM/DD/YYYY.
// Returns "" when the token is not a date.
func NormalizeTokenDate(tok string) string {
	m := tokenDate.FindString(tok)
	if m == "" {
		return ""
	}
	parts := strings.Split(m, "/")
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return ""
	}
	year := parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%02d/%02d/%s", month, day, year)
}
