package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

var (
	nameSSN       = regexp.MustCompile(`NAME:\s*([A-Z\s]+?)\s+SSN`)
	namePrefix    = regexp.MustCompile(`NAME:\s*([A-Z][A-Z\s]+)`)
	allCapsLine   = regexp.MustCompile(`^[A-Z]{2,}(?:\s+[A-Z]{2,})+$`)
	fileNameJunk  = regexp.MustCompile(`[_\-.]+`)
	fileNameDates = regexp.MustCompile(`\b20\d{2}\b|\d{1,2}/\d{1,2}`)
)

// MemberName pulls the sailor's name out of sheet text. Strategies run in
// order of reliability: the NAME/SSN header line, a bare NAME prefix, then
// the first all-caps multi-word line near the top. The file name is the last
// resort so a mangled header still produces an attributable sheet.
func MemberName(text, fileName string) (string, error) {
	if m := nameSSN.FindStringSubmatch(text); m != nil {
		return collapse(m[1]), nil
	}
	if m := namePrefix.FindStringSubmatch(text); m != nil {
		return collapse(m[1]), nil
	}
	for _, line := range strings.Split(text, "\n")[:min(40, strings.Count(text, "\n")+1)] {
		line = strings.TrimSpace(line)
		if allCapsLine.MatchString(line) && !looksLikeHeader(line) {
			return collapse(line), nil
		}
	}
	if name := nameFromFile(fileName); name != "" {
		return name, nil
	}
	return "", common.NewAppError("NAME_NOT_FOUND", "no member name found in "+fileName, common.ErrNameNotFound)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var headerWords = []string{"SEA", "DUTY", "CERTIFICATION", "PERIOD", "TOTAL", "PAGE", "DATE", "SHIP", "EVENT"}

func looksLikeHeader(line string) bool {
	for _, w := range headerWords {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

func nameFromFile(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = fileNameDates.ReplaceAllString(base, " ")
	base = fileNameJunk.ReplaceAllString(base, " ")
	return collapse(strings.ToUpper(base))
}
