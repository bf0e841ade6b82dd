package main

import (
	"context"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/night-owl-018/seapay-certifier/internal/annotate"
	"github.com/night-owl-018/seapay-certifier/internal/common"
	"github.com/night-owl-018/seapay-certifier/internal/core"
	"github.com/night-owl-018/seapay-certifier/internal/export"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
	"github.com/night-owl-018/seapay-certifier/internal/ocr"
	"github.com/night-owl-018/seapay-certifier/internal/overrides"
	"github.com/night-owl-018/seapay-certifier/internal/reference"
	"github.com/night-owl-018/seapay-certifier/internal/repository"
	"github.com/night-owl-018/seapay-certifier/internal/summary"
)

// app wires the full processing stack for a CLI invocation.
type app struct {
	cfg    *common.Config
	logger *slog.Logger

	db        *repository.DB
	runs      repository.RunRepository
	refRepo   repository.ReferenceRepository
	refs      *reference.Store
	ledgers   *ledger.Store
	overrides *overrides.Service
	exporter  *export.Service
	proc      *core.Processor
}

func newApp(ctx context.Context) (*app, error) {
	cfg := common.LoadConfig()
	applyViper(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Paths.EnsureDirs(); err != nil {
		return nil, err
	}
	logger := slog.Default()

	db, err := repository.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		runs:    repository.NewRunRepository(db),
		refRepo: repository.NewReferenceRepository(db),
	}

	a.refs = reference.NewStore(
		cfg.Paths.ShipFile, cfg.Paths.RosterFile,
		cfg.Processing.ShipMatchMin, cfg.Processing.IdentityMatchMin,
		logger)
	if err := a.loadReferenceData(ctx); err != nil {
		logger.Warn("reference data unavailable", "error", err)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	a.ledgers = ledger.NewStore(cfg.Paths.ReviewPath(), logger)
	a.overrides = overrides.NewService(repository.NewOverrideRepository(db), logger)
	a.exporter = export.NewService(logger)

	renderer := annotate.NewRenderer(extractor, cfg.Processing.StrikeColor, logger)
	summaries := summary.NewWriter(cfg.Paths.SummaryDir(), logger)

	a.proc = core.NewProcessor(cfg, logger, extractor, a.refs, a.ledgers,
		a.overrides, renderer, summaries, a.exporter, a.runs, core.NewProgress())
	return a, nil
}

// loadReferenceData prefers seeded database tables and falls back to the
// seed files on disk.
func (a *app) loadReferenceData(ctx context.Context) error {
	ships, err := a.refRepo.ListShips(ctx)
	if err != nil {
		return err
	}
	roster, err := a.refRepo.ListRoster(ctx)
	if err != nil {
		return err
	}
	if len(ships) > 0 && len(roster) > 0 {
		a.refs.SetData(
			reference.NewShipIndex(ships, a.cfg.Processing.ShipMatchMin),
			reference.NewRoster(roster, a.cfg.Processing.IdentityMatchMin))
		a.logger.Info("reference data loaded from database",
			"ships", len(ships), "roster", len(roster))
		return nil
	}
	return a.refs.Reload()
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("database close failed", "error", err)
	}
}

// applyViper overlays config-file values onto the env-derived config.
func applyViper(cfg *common.Config) {
	if v := viper.GetString("paths.data_dir"); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := viper.GetString("paths.output_dir"); v != "" {
		cfg.Paths.OutputDir = v
	}
	if v := viper.GetString("paths.ship_file"); v != "" {
		cfg.Paths.ShipFile = v
	}
	if v := viper.GetString("paths.roster_file"); v != "" {
		cfg.Paths.RosterFile = v
	}
	if v := viper.GetString("database.path"); v != "" {
		cfg.Database.Path = v
	}
	if v := viper.GetString("processing.strike_color"); v != "" {
		cfg.Processing.StrikeColor = v
	}
	if v := viper.GetFloat64("processing.ship_match_min"); v > 0 {
		cfg.Processing.ShipMatchMin = v
	}
	if v := viper.GetFloat64("processing.identity_match_min"); v > 0 {
		cfg.Processing.IdentityMatchMin = v
	}
	if v := viper.GetString("ocr.tesseract"); v != "" {
		cfg.OCR.Tesseract = v
	}
	if v := viper.GetInt("ocr.dpi"); v > 0 {
		cfg.OCR.DPI = v
	}
}
