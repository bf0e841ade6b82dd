package classify

import (
	"fmt"
	"sort"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/extract"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
	"github.com/night-owl-018/seapay-certifier/internal/reference"
)

// Result is the partitioned outcome for one sheet: payable rows and the
// rejected events, each carrying its reason.
type Result struct {
	Rows    []ledger.Event
	Invalid []ledger.Event
}

type dated struct {
	entry  extract.Entry
	ship   string
	inport string // standardized shore-side label, "" when at-sea
}

// Partition applies the validity rules to extracted entries. Per date:
// shore-side labeled rows are rejected outright; rows naming a single vessel
// keep the first occurrence and reject later ones as duplicates; rows naming
// several vessels keep the mission-coded one (lowest occurrence on a tie) and
// reject the rest. Rows with no vessel text at all are rejected as unknown.
func Partition(entries []extract.Entry, ships *reference.ShipIndex) Result {
	byDate := make(map[string][]dated)
	var order []string

	for _, e := range entries {
		d := dated{entry: e}
		if label := inportLabel(e, ships); label != "" {
			d.inport = label
		} else {
			name, _, _ := ships.Match(e.Raw)
			d.ship = name
		}
		key := e.Date.String()
		if _, seen := byDate[key]; !seen {
			order = append(order, key)
		}
		byDate[key] = append(byDate[key], d)
	}

	var res Result
	for _, key := range order {
		group := byDate[key]

		var valids []dated
		for _, d := range group {
			switch {
			case d.inport != "":
				res.Invalid = append(res.Invalid, rejected(d.entry, d.inport,
					fmt.Sprintf(constants.ReasonInportFormat, d.inport), constants.CategoryInport))
			case d.ship == "":
				res.Invalid = append(res.Invalid, rejected(d.entry, "",
					constants.ReasonUnknownEvent, constants.CategoryUnknown))
			default:
				valids = append(valids, d)
			}
		}
		if len(valids) == 0 {
			continue
		}

		kept := pick(valids)
		res.Rows = append(res.Rows, accepted(kept.entry, kept.ship))
		for _, d := range valids {
			if d.entry == kept.entry {
				continue
			}
			res.Invalid = append(res.Invalid, rejected(d.entry, d.ship,
				constants.ReasonDuplicateDate, constants.CategoryDuplicate))
		}
	}

	for i := range res.Rows {
		res.Rows[i].EventIndex = i
	}
	for i := range res.Invalid {
		res.Invalid[i].EventIndex = -(i + 1)
	}
	return res
}

// pick chooses the single payable row for a date. One vessel: first
// occurrence wins. Several vessels: mission-coded rows outrank the rest, then
// the lowest occurrence.
func pick(valids []dated) dated {
	shipSet := make(map[string]struct{})
	for _, d := range valids {
		shipSet[d.ship] = struct{}{}
	}
	if len(shipSet) == 1 {
		return valids[0]
	}

	pool := valids
	if missions := filterMission(valids); len(missions) > 0 {
		pool = missions
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].entry.OccurrenceIndex < pool[j].entry.OccurrenceIndex
	})
	return pool[0]
}

func filterMission(ds []dated) []dated {
	var out []dated
	for _, d := range ds {
		if constants.IsMissionEvent(d.entry.Upper) {
			out = append(out, d)
		}
	}
	return out
}

// inportLabel standardizes shore-side training labels, most specific first.
// An SBTT row that also names a vessel is labeled "<SHIP> SBTT".
func inportLabel(e extract.Entry, ships *reference.ShipIndex) string {
	label := constants.HasInportLabel(e.Upper)
	if label == "SBTT" {
		if name, _, ok := ships.Match(e.Raw); ok {
			return name + " SBTT"
		}
	}
	return label
}

func accepted(e extract.Entry, ship string) ledger.Event {
	return ledger.Event{
		Date:            e.Date,
		Ship:            ship,
		Raw:             e.Raw,
		OccurrenceIndex: e.OccurrenceIndex,
		Classification: ledger.Classification{
			IsValid: true,
			Source:  constants.SourceParser,
		},
	}
}

func rejected(e extract.Entry, ship, reason string, cat constants.Category) ledger.Event {
	return ledger.Event{
		Date:            e.Date,
		Ship:            ship,
		Raw:             e.Raw,
		OccurrenceIndex: e.OccurrenceIndex,
		Classification: ledger.Classification{
			IsValid:  false,
			Reason:   reason,
			Category: cat,
			Source:   constants.SourceParser,
		},
	}
}
