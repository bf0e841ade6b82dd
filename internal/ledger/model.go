package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/night-owl-018/seapay-certifier/constants"
)

// Date is a calendar day serialized as MM/DD/YYYY, the format the
// certification sheets use.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{constants.DateLayout, constants.DateLayoutShort, "1/2/2006", "1/2/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

func (d Date) String() string {
	return d.Format(constants.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(constants.DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Classification carries the current validity verdict for an event and where
// it came from.
type Classification struct {
	IsValid  bool               `json:"is_valid"`
	Reason   string             `json:"reason,omitempty"`
	Category constants.Category `json:"category,omitempty"`
	Source   string             `json:"source"`
}

// OverrideMeta records the reviewer decision last applied to an event.
type OverrideMeta struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Source string `json:"source,omitempty"`
}

// Event is one dated line extracted from a certification sheet.
type Event struct {
	Date            Date           `json:"date"`
	Ship            string         `json:"ship,omitempty"`
	EventCode       string         `json:"event_code,omitempty"`
	Raw             string         `json:"raw"`
	OccurrenceIndex int            `json:"occurrence_index"`
	EventIndex      int            `json:"event_index"`
	Classification  Classification `json:"classification"`
	Override        *OverrideMeta  `json:"override,omitempty"`
}

// Signature identifies an event stably across re-extractions of the same
// sheet even when partition indices shift.
func (e Event) Signature() string {
	return strings.Join([]string{
		e.Date.String(),
		e.Ship,
		fmt.Sprintf("%d", e.OccurrenceIndex),
		e.Raw,
	}, "\x1f")
}

// ReportingPeriod is the certification window printed on the sheet header.
type ReportingPeriod struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Sheet is one processed certification PDF belonging to a member.
type Sheet struct {
	SourceFile      string          `json:"source_file"`
	SourceHash      string          `json:"source_hash,omitempty"`
	ReportingPeriod ReportingPeriod `json:"reporting_period,omitzero"`
	Rows            []Event         `json:"rows"`
	InvalidEvents   []Event         `json:"invalid_events"`
	ProcessedAt     string          `json:"processed_at,omitempty"`
	OCRMethod       string          `json:"ocr_method,omitempty"`
}

// Member groups all sheets attributed to one crew member.
type Member struct {
	Rate   string  `json:"rate,omitempty"`
	Last   string  `json:"last"`
	First  string  `json:"first,omitempty"`
	Sheets []Sheet `json:"sheets"`
}

// Key is the canonical member identifier "RATE LAST,FIRST" used as the
// ledger map key and in override records.
func (m Member) Key() string {
	return strings.ToUpper(strings.TrimSpace(m.Rate + " " + m.Last + "," + m.First))
}

// Ledger is the full review document, keyed by member key.
type Ledger struct {
	Members map[string]*Member `json:"members"`
}

func New() *Ledger {
	return &Ledger{Members: make(map[string]*Member)}
}

// Member returns the entry for key, creating it from identity fields when
// absent.
func (l *Ledger) Member(key string, rate, last, first string) *Member {
	if m, ok := l.Members[key]; ok {
		return m
	}
	m := &Member{Rate: rate, Last: last, First: first}
	l.Members[key] = m
	return m
}

// SheetByFile returns the member's sheet with the given source file name.
func (m *Member) SheetByFile(file string) *Sheet {
	for i := range m.Sheets {
		if m.Sheets[i].SourceFile == file {
			return &m.Sheets[i]
		}
	}
	return nil
}

// ReindexPartitions rewrites EventIndex on both partitions after any insert
// or move. Payable rows carry their slice position; rejected events carry
// -(i+1), so a published index can be echoed straight back into an override
// submission and still address the right partition.
func (s *Sheet) ReindexPartitions() {
	for i := range s.Rows {
		s.Rows[i].EventIndex = i
	}
	for i := range s.InvalidEvents {
		s.InvalidEvents[i].EventIndex = -(i + 1)
	}
}
