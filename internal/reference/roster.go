package reference

import (
	"bufio"
	"os"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

// Identity is a crew member as carried on the command roster.
type Identity struct {
	Rate  string
	Last  string
	First string
}

// Key is the canonical member key used across the ledger, overrides and
// output files: "RATE LAST,FIRST".
func (id Identity) Key() string {
	return strings.ToUpper(strings.TrimSpace(id.Rate + " " + id.Last + "," + id.First))
}

// Roster resolves noisy OCR'd member names against the command roster.
type Roster struct {
	entries  []Identity
	keys     []string // "LAST FIRST" comparison keys
	minScore float64
	jw       *metrics.JaroWinkler
}

// NewRoster builds a roster matcher. minScore is the similarity floor for
// snapping an OCR name to a roster entry.
func NewRoster(entries []Identity, minScore float64) *Roster {
	r := &Roster{minScore: minScore, jw: metrics.NewJaroWinkler()}
	for _, e := range entries {
		e.Rate = strings.ToUpper(strings.TrimSpace(e.Rate))
		e.Last = strings.ToUpper(strings.TrimSpace(e.Last))
		e.First = strings.ToUpper(strings.TrimSpace(e.First))
		if e.Last == "" {
			continue
		}
		r.entries = append(r.entries, e)
		r.keys = append(r.keys, strings.TrimSpace(e.Last+" "+e.First))
	}
	return r
}

// LoadRoster reads "RATE|LAST|FIRST" lines. Blank lines and #-comments are
// skipped; a line without pipes is treated as a bare last name.
func LoadRoster(path string, minScore float64) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(common.ErrReferenceMissing, "open roster", err)
	}
	defer f.Close()

	var entries []Identity
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		switch len(parts) {
		case 1:
			entries = append(entries, Identity{Last: parts[0]})
		case 2:
			entries = append(entries, Identity{Rate: parts[0], Last: parts[1]})
		default:
			entries = append(entries, Identity{Rate: parts[0], Last: parts[1], First: parts[2]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, common.WrapError(common.ErrReferenceMissing, "read roster", err)
	}
	return NewRoster(entries, minScore), nil
}

// Entries returns the roster contents.
func (r *Roster) Entries() []Identity {
	out := make([]Identity, len(r.entries))
	copy(out, r.entries)
	return out
}

// Resolve matches a raw OCR'd name string against the roster. When nothing
// clears the floor the last whitespace token of the raw name is used as the
// surname so the sheet is still attributable for review.
func (r *Roster) Resolve(rawName string) (Identity, float64, bool) {
	cleaned := nonLetter.ReplaceAllString(strings.ToUpper(rawName), " ")
	cleaned = multiSpace.ReplaceAllString(strings.TrimSpace(cleaned), " ")
	if cleaned == "" {
		return Identity{}, 0, false
	}

	best := -1
	bestScore := 0.0
	for i, key := range r.keys {
		s := strutil.Similarity(cleaned, key, r.jw)
		if s > bestScore {
			bestScore = s
			best = i
		}
	}
	if best >= 0 && bestScore >= r.minScore {
		return r.entries[best], bestScore, true
	}

	fields := strings.Fields(cleaned)
	fallback := Identity{Last: fields[len(fields)-1]}
	return fallback, bestScore, false
}
