package reference

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonLetter     = regexp.MustCompile(`[^A-Z ]`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

// NormalizeShip reduces an OCR'd vessel string to a canonical comparison key:
// upper-cased, parentheticals and hull numbers dropped, letters only.
func NormalizeShip(s string) string {
	up := strings.ToUpper(s)
	up = parenthetical.ReplaceAllString(up, " ")
	up = nonLetter.ReplaceAllString(up, " ")
	up = multiSpace.ReplaceAllString(strings.TrimSpace(up), " ")
	return up
}

func tokenSort(s string) string {
	parts := strings.Fields(s)
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// ShipIndex matches noisy OCR vessel names against a known platform list.
type ShipIndex struct {
	names      []string // canonical names as listed in the ship file
	normalized []string
	minScore   float64
	dice       *metrics.SorensenDice
}

// NewShipIndex builds an index over canonical platform names. minScore is the
// similarity floor below which an OCR string is kept as-is instead of being
// snapped to a known vessel.
func NewShipIndex(names []string, minScore float64) *ShipIndex {
	idx := &ShipIndex{minScore: minScore, dice: metrics.NewSorensenDice()}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		idx.names = append(idx.names, strings.ToUpper(n))
		idx.normalized = append(idx.normalized, tokenSort(NormalizeShip(n)))
	}
	return idx
}

// LoadShipIndex reads one vessel name per line. Blank lines and #-comments
// are skipped.
func LoadShipIndex(path string, minScore float64) (*ShipIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(common.ErrReferenceMissing, "open ship list", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, common.WrapError(common.ErrReferenceMissing, "read ship list", err)
	}
	return NewShipIndex(names, minScore), nil
}

// Names returns the canonical vessel list.
func (idx *ShipIndex) Names() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

// Match snaps a raw OCR vessel string to the closest known platform. When no
// candidate clears the similarity floor the cleaned literal is returned with
// ok=false so downstream grouping still works on unknown vessels.
func (idx *ShipIndex) Match(raw string) (name string, score float64, ok bool) {
	cleaned := NormalizeShip(raw)
	if cleaned == "" {
		return "", 0, false
	}
	key := tokenSort(cleaned)

	best := -1
	bestScore := 0.0
	for i, norm := range idx.normalized {
		s := strutil.Similarity(key, norm, idx.dice)
		if s > bestScore {
			bestScore = s
			best = i
		}
	}
	if best >= 0 && bestScore >= idx.minScore {
		return idx.names[best], bestScore, true
	}
	return cleaned, bestScore, false
}
