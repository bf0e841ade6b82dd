package ocr

import (
	"regexp"
	"strings"
)

var timeToken = regexp.MustCompile(`\b[0-2]?\d[0-5]\d\b`)

// StripTimes removes 24-hour clock tokens (0630, 1345) that OCR picks up from
// the signature columns and that would otherwise be mistaken for event codes.
func StripTimes(s string) string {
	return timeToken.ReplaceAllString(s, "")
}

var datePattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(/\d{2,4})?\b`)

var sheetHeaderKeywords = []string{
	"CAREER SEA PAY",
	"SEA DUTY",
	"CERTIFICATION",
	"REPORTING PERIOD",
}

// LooksLikeSheet reports whether extracted text plausibly came from a sea duty
// certification sheet rather than a blank or image-only text layer.
func LooksLikeSheet(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 200 {
		return false
	}
	upper := strings.ToUpper(trimmed)
	for _, kw := range sheetHeaderKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return len(datePattern.FindAllString(upper, 3)) >= 3
}
