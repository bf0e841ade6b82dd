package extract

import (
	"regexp"
	"strings"
)

var (
	parenGroup = regexp.MustCompile(`\(([^)]*)\)`)
	icaToken   = regexp.MustCompile(`(?i)\bICA\b`)
)

// SanitizeParentheticals scrubs OCR garbage inside parenthetical event
// annotations for the known shore-side codes. Other parentheticals are left
// untouched since they may carry real event text.
func SanitizeParentheticals(s string) string {
	if !strings.Contains(s, "(") || !strings.Contains(s, ")") {
		return s
	}
	return parenGroup.ReplaceAllStringFunc(s, func(group string) string {
		inner := group[1 : len(group)-1]
		up := strings.ToUpper(inner)
		if !strings.Contains(up, "ASW") && !strings.Contains(up, "ASTAC") &&
			!strings.Contains(up, "MITE") && !strings.Contains(up, "SBTT") {
			return group
		}
		inner = strings.ReplaceAll(inner, "°", "")
		inner = strings.ReplaceAll(inner, "�", "")
		inner = strings.ReplaceAll(inner, "þ", " ")
		inner = icaToken.ReplaceAllString(inner, "")
		inner = strings.Join(strings.Fields(inner), " ")
		return "(" + inner + ")"
	})
}
