package overrides

import (
	"context"
	"log/slog"
	"sort"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
	"github.com/night-owl-018/seapay-certifier/internal/repository"
)

// target locates one event inside a sheet: which partition and at what slot.
type target struct {
	invalid bool
	index   int
}

// Apply re-applies every stored correction for a member onto a freshly
// rebuilt ledger entry. Applying the same set twice yields the same result.
func (s *Service) Apply(ctx context.Context, memberKey string, member *ledger.Member) error {
	recs, err := s.repo.ListForMember(ctx, memberKey)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	bySheet := make(map[string][]repository.OverrideRecord)
	for _, rec := range recs {
		bySheet[rec.SheetFile] = append(bySheet[rec.SheetFile], rec)
	}
	for file, sheetRecs := range bySheet {
		sheet := member.SheetByFile(file)
		if sheet == nil {
			// sheet no longer in the ledger; its overrides are no-ops
			continue
		}
		reconcileSheet(sheet, sheetRecs, s.logger)
	}
	return nil
}

type move struct {
	from target
	rec  repository.OverrideRecord
}

// reconcileSheet resolves each override against the sheet and applies it.
// Metadata updates happen in place; partition changes are collected and
// executed afterwards in descending index order so earlier removals cannot
// invalidate later ones.
func reconcileSheet(sheet *ledger.Sheet, recs []repository.OverrideRecord, logger *slog.Logger) {
	var moves []move
	claimed := make(map[target]bool)

	for _, rec := range recs {
		tgt, ok := resolve(sheet, rec)
		if !ok {
			logger.Debug("override target not found",
				"sheet", rec.SheetFile, "index", rec.EventIndex)
			continue
		}
		// two records can resolve to one event when a stale index hint and a
		// signature search land on the same slot; only the first one applies
		if claimed[tgt] {
			logger.Debug("override target already claimed",
				"sheet", rec.SheetFile, "index", rec.EventIndex)
			continue
		}
		claimed[tgt] = true
		ev := eventAt(sheet, tgt)
		if tgt.invalid != rec.MakeValid {
			// already in the requested partition
			applyMeta(ev, rec)
			continue
		}
		moves = append(moves, move{from: tgt, rec: rec})
	}

	// separate passes per source partition, highest slot first
	sort.Slice(moves, func(i, j int) bool { return moves[i].from.index > moves[j].from.index })
	for _, mv := range moves {
		if mv.from.invalid {
			ev := sheet.InvalidEvents[mv.from.index]
			sheet.InvalidEvents = append(sheet.InvalidEvents[:mv.from.index], sheet.InvalidEvents[mv.from.index+1:]...)
			applyMeta(&ev, mv.rec)
			sheet.Rows = append(sheet.Rows, ev)
		} else {
			ev := sheet.Rows[mv.from.index]
			sheet.Rows = append(sheet.Rows[:mv.from.index], sheet.Rows[mv.from.index+1:]...)
			applyMeta(&ev, mv.rec)
			sheet.InvalidEvents = append(sheet.InvalidEvents, ev)
		}
	}
	sheet.ReindexPartitions()
}

// resolve finds the event an override addresses: first the recorded index
// hint (negative values encode the rejected partition as -(i+1)), then a
// signature search across both partitions. A signature hit in the opposite
// partition from the hint is authoritative.
func resolve(sheet *ledger.Sheet, rec repository.OverrideRecord) (target, bool) {
	hint := target{invalid: rec.EventIndex < 0, index: rec.EventIndex}
	if hint.invalid {
		hint.index = -rec.EventIndex - 1
	}

	if ev := eventAt(sheet, hint); ev != nil {
		if rec.Signature == "" || ev.Signature() == rec.Signature {
			return hint, true
		}
	}
	if rec.Signature == "" {
		return target{}, false
	}
	for i := range sheet.Rows {
		if sheet.Rows[i].Signature() == rec.Signature {
			return target{invalid: false, index: i}, true
		}
	}
	for i := range sheet.InvalidEvents {
		if sheet.InvalidEvents[i].Signature() == rec.Signature {
			return target{invalid: true, index: i}, true
		}
	}
	return target{}, false
}

func eventAt(sheet *ledger.Sheet, t target) *ledger.Event {
	if t.index < 0 {
		return nil
	}
	if t.invalid {
		if t.index >= len(sheet.InvalidEvents) {
			return nil
		}
		return &sheet.InvalidEvents[t.index]
	}
	if t.index >= len(sheet.Rows) {
		return nil
	}
	return &sheet.Rows[t.index]
}

func applyMeta(ev *ledger.Event, rec repository.OverrideRecord) {
	status := constants.StatusInvalid
	if rec.MakeValid {
		status = constants.StatusValid
	}
	ev.Classification.IsValid = rec.MakeValid
	ev.Classification.Source = constants.SourceOverride
	if rec.MakeValid {
		ev.Classification.Category = constants.CategoryNone
	}
	if rec.Reason != "" {
		ev.Classification.Reason = rec.Reason
	} else if rec.MakeValid {
		ev.Classification.Reason = ""
	}
	ev.Override = &ledger.OverrideMeta{
		Status: status,
		Reason: rec.Reason,
		Source: constants.SourceOverride,
	}
}
