package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/classify"
	"github.com/night-owl-018/seapay-certifier/internal/ledger"
)

const TrackerFileName = "SEA_PAY_TRACKER.xlsx"

// Service renders the review ledger into the command's tracker workbook, one
// row per payable period.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// TrackerXLSX returns workbook bytes for the whole ledger.
func (s *Service) TrackerXLSX(l *ledger.Ledger) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Sea Pay"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Rate",
		"Last Name",
		"First Name",
		"Ship",
		"Period Start",
		"Period End",
		"Days",
		"Total Days",
		"Excluded Events",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	keys := make([]string, 0, len(l.Members))
	for k := range l.Members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := 2
	totalRows := 0
	for _, key := range keys {
		m := l.Members[key]

		var rows, invalid []ledger.Event
		for _, sh := range m.Sheets {
			rows = append(rows, sh.Rows...)
			invalid = append(invalid, sh.InvalidEvents...)
		}
		periods := classify.GroupByShip(rows)
		sort.Slice(periods, func(i, j int) bool {
			if periods[i].Ship != periods[j].Ship {
				return periods[i].Ship < periods[j].Ship
			}
			return periods[i].Start.Before(periods[j].Start)
		})
		totalDays := classify.TotalDays(periods)

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if len(periods) == 0 {
			write(1, m.Rate)
			write(2, m.Last)
			write(3, m.First)
			write(7, 0)
			write(8, 0)
			write(9, len(invalid))
			row++
			totalRows++
			continue
		}
		for _, p := range periods {
			write(1, m.Rate)
			write(2, m.Last)
			write(3, m.First)
			write(4, p.Ship)
			write(5, p.Start.Format(constants.DateLayout))
			write(6, p.End.Format(constants.DateLayout))
			write(7, p.Days())
			write(8, totalDays)
			write(9, len(invalid))
			row++
			totalRows++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "D", 28)
	_ = f.SetColWidth(sheet, "E", "F", 14)
	_ = f.SetColWidth(sheet, "G", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.tracker.ok",
		"members", len(keys),
		"rows", totalRows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteTracker renders the workbook and replaces the file on disk.
func (s *Service) WriteTracker(l *ledger.Ledger, dir string) (string, error) {
	data, err := s.TrackerXLSX(l)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create tracker dir: %w", err)
	}
	path := filepath.Join(dir, TrackerFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write tracker: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("replace tracker: %w", err)
	}
	return path, nil
}
