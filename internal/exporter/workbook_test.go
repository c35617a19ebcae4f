package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vendorperf/internal/config"
	"vendorperf/internal/report"
)

func workbookTestEnv(t *testing.T) (*WorkbookWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	outputDir := filepath.Join(tempDir, "output")
	require.NoError(t, os.MkdirAll(outputDir, 0755))

	writer := NewWorkbookWriter(&config.Paths{
		WorkingDir: tempDir,
		OutputDir:  outputDir,
		ArchiveDir: filepath.Join(outputDir, "archive"),
		LogsDir:    filepath.Join(tempDir, "logs"),
	})
	return writer, outputDir
}

func testGrids() []report.Grid {
	return []report.Grid{
		{
			Name:   "ALF Census",
			File:   "alf_census.csv",
			Header: []string{"facility_name", "census-2026-04", "census-2026-05"},
			Rows: [][]string{
				{"Birch Manor", "2", "0"},
				{"Cedar House", "3", "4"},
			},
		},
		{
			Name:   "ADC Census",
			File:   "adc_census.csv",
			Header: []string{"vendor", "adc_census-2026-04"},
			Rows: [][]string{
				{"Sunrise ADC", "12"},
			},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	writer, outputDir := workbookTestEnv(t)

	require.NoError(t, writer.WriteWorkbook("vendor_performance.xlsx", testGrids()))

	path := filepath.Join(outputDir, "vendor_performance.xlsx")
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"ALF Census", "ADC Census"}, f.GetSheetList())

	rows, err := f.GetRows("ALF Census")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"facility_name", "census-2026-04", "census-2026-05"}, rows[0])
	assert.Equal(t, []string{"Birch Manor", "2", "0"}, rows[1])
	assert.Equal(t, []string{"Cedar House", "3", "4"}, rows[2])

	// Count cells survive a raw read unchanged.
	raw, err := f.GetCellValue("ALF Census", "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "3", raw)

	rows, err = f.GetRows("ADC Census")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Sunrise ADC", "12"}, rows[1])
}

func TestWriteWorkbookNoGrids(t *testing.T) {
	writer, _ := workbookTestEnv(t)
	assert.Error(t, writer.WriteWorkbook("empty.xlsx", nil))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "ALF Census", sheetName("ALF Census"))

	long := "An Extremely Long Report Name That Exceeds The Limit"
	assert.Len(t, sheetName(long), 31)
}
