package summary

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/classify"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

const (
	heavyRule = "====================================================================="
	lightRule = "---------------------------------------------------------------------"

	compiledName = "ALL_SUMMARIES_COMPILED.txt"
)

// Writer regenerates the plain-text review summaries, one file per member
// plus a compiled roll-up. Files are rewritten wholesale each run.
type Writer struct {
	dir    string
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// WriteAll renders every member in the ledger, in sorted key order.
func (w *Writer) WriteAll(l *ledger.Ledger) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}

	keys := make([]string, 0, len(l.Members))
	for k := range l.Members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var compiled []string
	for _, key := range keys {
		m := l.Members[key]
		lines := render(m)
		if err := writeAtomic(filepath.Join(w.dir, fileName(m)), strings.Join(lines, "\n")); err != nil {
			return err
		}
		compiled = append(compiled, lines...)
		compiled = append(compiled, "")
	}

	body := "NO DATA\n"
	if len(compiled) > 0 {
		body = strings.Join(compiled, "\n")
	}
	if err := writeAtomic(filepath.Join(w.dir, compiledName), body); err != nil {
		return err
	}
	w.logger.Info("summary files written", "members", len(keys), "dir", w.dir)
	return nil
}

func render(m *ledger.Member) []string {
	var rows, invalid []ledger.Event
	for _, sheet := range m.Sheets {
		rows = append(rows, sheet.Rows...)
		invalid = append(invalid, sheet.InvalidEvents...)
	}

	periods := classify.GroupByShip(rows)
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Ship != periods[j].Ship {
			return periods[i].Ship < periods[j].Ship
		}
		return periods[i].Start.Before(periods[j].Start)
	})
	totalDays := classify.TotalDays(periods)

	var lines []string
	lines = append(lines, heavyRule)
	lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s %s, %s", m.Rate, m.Last, m.First)))
	lines = append(lines, heavyRule, "")
	lines = append(lines, "VALID SEA PAY PERIODS", lightRule)

	if len(periods) > 0 {
		for _, p := range periods {
			lines = append(lines, fmt.Sprintf("%s : FROM %s TO %s (%d DAYS)",
				p.Ship,
				p.Start.Format(constants.DateLayout),
				p.End.Format(constants.DateLayout),
				p.Days()))
		}
		lines = append(lines, fmt.Sprintf("TOTAL VALID DAYS: %d", totalDays))
	} else {
		lines = append(lines, "  NONE", "TOTAL VALID DAYS: 0")
	}

	lines = append(lines, "", lightRule)
	lines = append(lines, "INVALID / EXCLUDED EVENTS / UNRECOGNIZED / NON-SHIP ENTRIES")
	unknown, dupes := splitRejected(invalid)
	if len(unknown) > 0 {
		for _, e := range unknown {
			lines = append(lines, fmt.Sprintf("  %s : %s", e.Date, e.Raw))
		}
	} else {
		lines = append(lines, "  NONE")
	}

	lines = append(lines, "", lightRule)
	lines = append(lines, "DUPLICATE DATE CONFLICTS")
	if len(dupes) > 0 {
		for _, e := range dupes {
			lines = append(lines, fmt.Sprintf("  %s : %s", e.Date, e.Ship))
		}
	} else {
		lines = append(lines, "  NONE")
	}

	lines = append(lines, "", lightRule)
	lines = append(lines, "EVENT LOG")
	all := append(append([]ledger.Event{}, rows...), invalid...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date.Time) })
	if len(all) > 0 {
		for _, e := range all {
			status := "VALID"
			if !e.Classification.IsValid {
				status = "EXCLUDED"
			}
			entry := fmt.Sprintf("  %s [%s] %s", e.Date, status, e.Raw)
			if e.Classification.Reason != "" {
				entry += " - " + e.Classification.Reason
			}
			lines = append(lines, entry)
		}
	} else {
		lines = append(lines, "  NONE")
	}

	lines = append(lines, "")
	return lines
}

func splitRejected(invalid []ledger.Event) (unknown, dupes []ledger.Event) {
	for _, e := range invalid {
		if e.Classification.Reason == constants.ReasonDuplicateDate {
			dupes = append(dupes, e)
		} else {
			unknown = append(unknown, e)
		}
	}
	return unknown, dupes
}

func fileName(m *ledger.Member) string {
	rate := strings.ReplaceAll(m.Rate, " ", "")
	base := strings.Trim(fmt.Sprintf("%s_%s_%s_summary", rate, m.Last, m.First), "_")
	base = strings.ReplaceAll(base, " ", "_")
	return base + ".txt"
}

func writeAtomic(path, body string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}
