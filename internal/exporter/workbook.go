package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vendorperf/internal/config"
	"vendorperf/internal/report"
)

// WorkbookWriter assembles all report grids into a single Excel workbook,
// one sheet per report. The workbook feeds the Vendor Performance grid
// spreadsheet directly instead of requiring per-CSV imports.
type WorkbookWriter struct {
	paths *config.Paths
}

// NewWorkbookWriter creates a new workbook writer instance
func NewWorkbookWriter(paths *config.Paths) *WorkbookWriter {
	return &WorkbookWriter{paths: paths}
}

// WriteWorkbook writes the grids to an xlsx file in the output directory.
func (w *WorkbookWriter) WriteWorkbook(filename string, grids []report.Grid) error {
	if len(grids) == 0 {
		return fmt.Errorf("no grids to write")
	}

	fullPath := filename
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.ReportPath(filename)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, grid := range grids {
		sheet := sheetName(grid.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheet(f, sheet, headerStyle, grid); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Debug("Workbook written",
		slog.String("path", fullPath),
		slog.Int("sheets", len(grids)))
	return nil
}

// writeSheet fills one sheet with a grid: styled header row, then data.
// Count columns are written as numbers so the spreadsheet can aggregate
// them without conversion.
func writeSheet(f *excelize.File, sheet string, headerStyle int, grid report.Grid) error {
	header := make([]any, len(grid.Header))
	for i, h := range grid.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	endCol, err := excelize.ColumnNumberToName(len(grid.Header))
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", endCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range grid.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if j == 0 {
				cells[j] = v
				continue
			}
			cells[j] = asNumber(v)
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return nil
}

// sheetName truncates a report name to Excel's 31-character sheet limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

// asNumber converts a count cell back to an int where possible.
func asNumber(s string) any {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
		return n
	}
	return s
}
