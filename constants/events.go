package constants

import "strings"

// Category classifies why an event was rejected.
type Category string

const (
	CategoryInport    Category = "in-port"
	CategoryDuplicate Category = "duplicate"
	CategoryUnknown   Category = "unknown"
	CategoryNone      Category = ""
)

// Classification sources.
const (
	SourceParser   = "parser"
	SourceOverride = "override"
)

// Override statuses.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

// Rejection reasons written into the review ledger and summaries.
const (
	ReasonDuplicateDate = "Duplicate entry for date"
	ReasonUnknownEvent  = "Unknown or Non-Platform Event"
	ReasonInportFormat  = "In-Port Shore Side Event (%s)"
)

// InportLabels are the shore-side training labels, most specific first.
// A row carrying one of these is an administrative event, never payable.
var InportLabels = []string{"ASW MITE", "ASTAC MITE", "SBTT", "MITE"}

// InvalidTextMarkers is the safety-net denylist scanned during annotation:
// a row containing any of these gets struck even if the parser missed it.
var InvalidTextMarkers = []string{"SBTT", "MITE", "ASTAC MITE", "ASW MITE", "ASW SBTT"}

// ContinuationHints mark OCR rows that belong to the date row above them
// (multi-line event text split by the recognizer).
var ContinuationHints = []string{"SBTT", "MITE", "ASW", "ASTAC", "T-", "M-", "*", "(", ")"}

// MissionTags identify mission-coded events, preferred when one date carries
// rows for several ships.
var MissionTags = []string{"M1", "M-1", "M2", "M-2"}

// TotalRowKeywords must all appear in the row holding the printed
// "Total Sea Pay Days" figure.
var TotalRowKeywords = []string{"TOTAL", "SEA", "PAY", "DAYS"}

// HasInportLabel reports the standardized shore-side label for a row, or ""
// when the row is not an in-port event.
func HasInportLabel(upper string) string {
	for _, l := range InportLabels {
		if strings.Contains(upper, l) {
			return l
		}
	}
	return ""
}

// IsMissionEvent reports whether the row text carries a mission tag.
func IsMissionEvent(upper string) bool {
	for _, t := range MissionTags {
		if strings.Contains(upper, t) {
			return true
		}
	}
	return false
}
