package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/annotate"
	"github.com/night-owl-018/seapay-certifier/internal/classify"
	"github.com/night-owl-018/seapay-certifier/internal/common"
	"github.com/night-owl-018/seapay-certifier/internal/export"
	"github.com/night-owl-018/seapay-certifier/internal/extract"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
	"github.com/night-owl-018/seapay-certifier/internal/ocr"
	"github.com/night-owl-018/seapay-certifier/internal/overrides"
	"github.com/night-owl-018/seapay-certifier/internal/reference"
	"github.com/night-owl-018/seapay-certifier/internal/repository"
	"github.com/night-owl-018/seapay-certifier/internal/summary"
)

// Processor coordinates a batch: OCR, extraction, classification, override
// reconciliation, annotation, summaries and the tracker workbook.
type Processor struct {
	cfg         *common.Config
	logger      *slog.Logger
	extractor   *ocr.Extractor
	refs        *reference.Store
	ledgerStore *ledger.Store
	overrides   *overrides.Service
	renderer    *annotate.Renderer
	summaries   *summary.Writer
	exporter    *export.Service
	runs        repository.RunRepository
	progress    *Progress
}

func NewProcessor(
	cfg *common.Config,
	logger *slog.Logger,
	extractor *ocr.Extractor,
	refs *reference.Store,
	ledgerStore *ledger.Store,
	overrideSvc *overrides.Service,
	renderer *annotate.Renderer,
	summaries *summary.Writer,
	exporter *export.Service,
	runs repository.RunRepository,
	progress *Progress,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:         cfg,
		logger:      logger,
		extractor:   extractor,
		refs:        refs,
		ledgerStore: ledgerStore,
		overrides:   overrideSvc,
		renderer:    renderer,
		summaries:   summaries,
		exporter:    exporter,
		runs:        runs,
		progress:    progress,
	}
}

// Progress returns the shared status record for polling.
func (p *Processor) Progress() Snapshot {
	return p.progress.Snapshot()
}

// ProcessBatch runs every PDF in the inbox sequentially. Recoverable
// per-document failures skip the document and the batch continues; missing
// reference data aborts before any output is produced.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	if p.refs.Ships() == nil || p.refs.Roster() == nil {
		return common.NewAppError("REFERENCE_MISSING", "reference data not loaded", common.ErrReferenceMissing)
	}

	files, err := p.listInbox()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		p.logger.Info("no input files", "dir", p.cfg.Paths.DataDir)
		return nil
	}

	run, err := p.runs.Create(ctx, len(files))
	if err != nil {
		return err
	}
	p.progress.Start(run.ID, len(files))
	p.logger.Info("batch started", "run_id", run.ID, "files", len(files))

	l, err := p.ledgerStore.Load()
	if err != nil {
		p.progress.Finish(constants.RunStatusError, err.Error())
		return err
	}

	processed, failed := 0, 0
	touched := make(map[string]bool)
	for _, file := range files {
		select {
		case <-ctx.Done():
			p.progress.Finish(constants.RunStatusError, ctx.Err().Error())
			_ = p.runs.Finish(context.WithoutCancel(ctx), run.ID, constants.RunStatusError, processed, failed, ctx.Err().Error())
			return ctx.Err()
		default:
		}

		p.progress.File(filepath.Base(file))
		key, err := p.processSheet(ctx, l, file, run.ID)
		if err != nil {
			p.logger.Error("sheet failed",
				"file", filepath.Base(file), "error", err)
			failed++
			p.progress.Done(false)
			continue
		}
		touched[key] = true
		processed++
		p.progress.Done(true)
	}

	if err := p.ledgerStore.Save(l); err != nil {
		p.progress.Finish(constants.RunStatusError, err.Error())
		_ = p.runs.Finish(ctx, run.ID, constants.RunStatusError, processed, failed, err.Error())
		return err
	}
	if err := p.summaries.WriteAll(l); err != nil {
		p.logger.Error("summary write failed", "error", err)
	}
	if _, err := p.exporter.WriteTracker(l, p.cfg.Paths.TrackerDir()); err != nil {
		p.logger.Error("tracker write failed", "error", err)
	}

	status := constants.RunStatusComplete
	msg := ""
	if failed > 0 {
		msg = fmt.Sprintf("%d of %d documents failed", failed, len(files))
	}
	p.progress.Finish(status, msg)
	if err := p.runs.Finish(ctx, run.ID, status, processed, failed, msg); err != nil {
		return err
	}
	p.logger.Info("batch finished", "run_id", run.ID, "processed", processed, "failed", failed)
	return nil
}

// processSheet handles one document end to end and returns the member key it
// was attributed to.
func (p *Processor) processSheet(ctx context.Context, l *ledger.Ledger, path, runID string) (string, error) {
	base := filepath.Base(path)
	start := time.Now()

	hash, err := fileSHA256(path)
	if err != nil {
		return "", err
	}
	// a seen hash means the bytes are unchanged since an earlier run; the
	// sheet is still reprocessed because stored overrides may have changed
	if seen, err := p.runs.SeenHash(ctx, hash); err != nil {
		p.logger.Warn("hash lookup failed", "file", base, "error", err)
	} else if seen {
		p.logger.Info("document seen in earlier run", "file", base, "sha256", hash[:12])
	}

	result, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	text := ocr.StripTimes(result.Text)

	rawName, err := extract.MemberName(text, base)
	if err != nil {
		return "", err
	}
	identity, score, matched := p.refs.Roster().Resolve(rawName)
	if !matched {
		p.logger.Warn("roster match weak, using surname fallback",
			"file", base, "name", rawName, "score", fmt.Sprintf("%.2f", score))
	}
	key := identity.Key()

	period := extract.FindPeriod(text)
	fallbackYear := extract.YearFromFilename(base, time.Now())
	entries := extract.ParseEntries(text, period, fallbackYear)
	res := classify.Partition(entries, p.refs.Ships())

	sheet := ledger.Sheet{
		SourceFile:      base,
		SourceHash:      hash,
		ReportingPeriod: period.Reported(),
		Rows:            res.Rows,
		InvalidEvents:   res.Invalid,
		ProcessedAt:     time.Now().UTC().Format(time.RFC3339),
		OCRMethod:       result.Method,
	}

	member := l.Member(key, identity.Rate, identity.Last, identity.First)
	replaceSheet(member, sheet)

	if err := p.overrides.Apply(ctx, key, member); err != nil {
		return "", err
	}

	current := member.SheetByFile(base)
	p.annotateSheet(ctx, path, identity, current, annotate.ExtractPrintedTotal(text), false)

	if err := p.runs.RecordHash(ctx, hash, base, runID); err != nil {
		p.logger.Warn("hash record failed", "file", base, "error", err)
	}

	p.logger.Info("sheet processed",
		"file", base,
		"member", key,
		"rows", len(current.Rows),
		"invalid", len(current.InvalidEvents),
		"method", result.Method,
		"elapsed_ms", time.Since(start).Milliseconds())
	return key, nil
}

// annotateSheet renders the marked copy for one sheet. Failures degrade to an
// unmarked copy inside the renderer, so errors here are log-only.
func (p *Processor) annotateSheet(ctx context.Context, inputPath string, id reference.Identity, sheet *ledger.Sheet, printedTotal string, rebuild bool) {
	computed := classify.TotalDays(classify.GroupByShip(sheet.Rows))

	var overrideValid []ledger.Event
	for _, ev := range sheet.Rows {
		if ev.Classification.Source == constants.SourceOverride {
			overrideValid = append(overrideValid, ev)
		}
	}
	if rebuild {
		overrideValid = append([]ledger.Event{}, sheet.Rows...)
	}

	req := annotate.Request{
		InputPath:      inputPath,
		OutputPath:     filepath.Join(p.cfg.Paths.MarkedDir(), markedName(id, sheet.SourceFile)),
		Rejected:       sheet.InvalidEvents,
		OverrideValid:  overrideValid,
		Rebuild:        rebuild,
		ComputedTotal:  computed,
		ExtractedTotal: printedTotal,
	}
	if err := p.renderer.MarkSheet(ctx, req); err != nil {
		p.logger.Error("annotation fallback failed",
			"file", sheet.SourceFile, "error", err)
	}
}

func (p *Processor) listInbox() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.Paths.DataDir)
	if err != nil {
		return nil, common.WrapError(common.ErrInvalidInput, "read input dir", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), constants.FileExtPDF) {
			files = append(files, filepath.Join(p.cfg.Paths.DataDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func replaceSheet(m *ledger.Member, sheet ledger.Sheet) {
	for i := range m.Sheets {
		if m.Sheets[i].SourceFile == sheet.SourceFile {
			m.Sheets[i] = sheet
			return
		}
	}
	m.Sheets = append(m.Sheets, sheet)
}

// markedName derives the annotated-copy file name from the resolved identity
// so re-runs overwrite instead of accumulating.
func markedName(id reference.Identity, sourceFile string) string {
	base := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	ident := strings.Trim(strings.Join([]string{
		strings.ReplaceAll(id.Rate, " ", ""),
		id.Last,
		id.First,
	}, "_"), "_")
	ident = strings.ReplaceAll(ident, " ", "_")
	return fmt.Sprintf("MARKED_%s_%s.pdf", ident, base)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", common.WrapError(common.ErrInvalidInput, "open input file", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", common.WrapError(common.ErrInternal, "hash input file", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
