package classify

import (
	"sort"
	"time"

	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

// Period is a contiguous run of payable days aboard one vessel.
type Period struct {
	Ship  string
	Start time.Time
	End   time.Time
}

// Days counts the period inclusively.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// GroupByShip folds payable rows into per-vessel periods. Consecutive days
// merge, and a Friday followed by the next Monday merges too since weekend
// days are not certified separately while underway.
func GroupByShip(rows []ledger.Event) []Period {
	byShip := make(map[string][]time.Time)
	var shipOrder []string
	for _, r := range rows {
		if _, seen := byShip[r.Ship]; !seen {
			shipOrder = append(shipOrder, r.Ship)
		}
		byShip[r.Ship] = append(byShip[r.Ship], r.Date.Time)
	}

	var out []Period
	for _, ship := range shipOrder {
		dates := dedupeSorted(byShip[ship])
		if len(dates) == 0 {
			continue
		}
		start, prev := dates[0], dates[0]
		for _, d := range dates[1:] {
			gap := int(d.Sub(prev).Hours() / 24)
			bridged := gap == 1 || (prev.Weekday() == time.Friday && gap == 3)
			if bridged {
				prev = d
				continue
			}
			out = append(out, Period{Ship: ship, Start: start, End: prev})
			start, prev = d, d
		}
		out = append(out, Period{Ship: ship, Start: start, End: prev})
	}
	return out
}

// TotalDays sums the inclusive length of every period.
func TotalDays(periods []Period) int {
	total := 0
	for _, p := range periods {
		total += p.Days()
	}
	return total
}

func dedupeSorted(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := dates[:0]
	var last time.Time
	for i, d := range dates {
		if i == 0 || !d.Equal(last) {
			out = append(out, d)
			last = d
		}
	}
	return out
}
