package core

import (
	"context"
	"path/filepath"

	"github.com/night-owl-018/seapay-certifier/internal/common"
	"github.com/night-owl-018/seapay-certifier/internal/reference"
)

// RebuildMember re-applies a member's stored overrides onto the current
// ledger, saves it, and regenerates that member's annotated sheets, the
// summaries and the tracker. Called after every override save or clear.
func (p *Processor) RebuildMember(ctx context.Context, memberKey string) error {
	l, err := p.ledgerStore.Load()
	if err != nil {
		return err
	}
	member, ok := l.Members[memberKey]
	if !ok {
		return common.NewAppError("NOT_FOUND", "no ledger entry for "+memberKey, common.ErrNotFound)
	}

	if err := p.overrides.Apply(ctx, memberKey, member); err != nil {
		return err
	}
	if err := p.ledgerStore.Save(l); err != nil {
		return err
	}

	id := reference.Identity{Rate: member.Rate, Last: member.Last, First: member.First}
	for i := range member.Sheets {
		sheet := &member.Sheets[i]
		original := filepath.Join(p.cfg.Paths.DataDir, sheet.SourceFile)
		p.annotateSheet(ctx, original, id, sheet, "", true)
	}

	if err := p.summaries.WriteAll(l); err != nil {
		return err
	}
	if _, err := p.exporter.WriteTracker(l, p.cfg.Paths.TrackerDir()); err != nil {
		return err
	}
	p.logger.Info("member rebuilt", "member", memberKey, "sheets", len(member.Sheets))
	return nil
}
