package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/repository"
)

// Service is a tiny façade over the run repository that produces XLSX bytes
// for exports.
type Service struct {
	runs   repository.RunRepository
	logger *slog.Logger
}

func NewService(runs repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// ExportRunXLSX returns an XLSX workbook (as bytes) for one run's records,
// one row per booking in the canonical column order.
func (s *Service) ExportRunXLSX(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	start := time.Now()

	recs, err := s.runs.GetRecords(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	buf, err := WorkbookBytes(recs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", runID.String(),
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

// WorkbookBytes renders records into a single-sheet workbook.
func WorkbookBytes(recs []booking.Record) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Bookings"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, field := range constants.AllFields() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, constants.ColumnTitle(field))
	}

	for i, rec := range recs {
		for col, v := range rec.Row() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Widen the columns that carry long values
	_ = f.SetColWidth(sheet, "A", "A", 26) // customer
	_ = f.SetColWidth(sheet, "E", "E", 22) // passenger name
	_ = f.SetColWidth(sheet, "K", "K", 24) // duty type
	_ = f.SetColWidth(sheet, "O", "P", 40) // addresses
	_ = f.SetColWidth(sheet, "S", "S", 48) // remarks

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
