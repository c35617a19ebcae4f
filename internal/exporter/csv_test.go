package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorperf/internal/config"
)

// setupTestEnv creates a CSVWriter rooted at a temporary directory.
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	outputDir := filepath.Join(tempDir, "output")
	require.NoError(t, os.MkdirAll(outputDir, 0755))

	writer := NewCSVWriter(&config.Paths{
		WorkingDir: tempDir,
		OutputDir:  outputDir,
		ArchiveDir: filepath.Join(outputDir, "archive"),
		LogsDir:    filepath.Join(tempDir, "logs"),
	})

	return writer, outputDir
}

// readCSV reads a written file back, stripping the BOM when present.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSimpleCSV(t *testing.T) {
	writer, outputDir := setupTestEnv(t)

	headers := []string{"facility_name", "census-2026-04"}
	records := [][]string{
		{"Birch Manor", "2"},
		{"Cedar House", "3"},
	}

	require.NoError(t, writer.WriteSimpleCSV("alf_census.csv", headers, records))

	path := filepath.Join(outputDir, "alf_census.csv")
	got := readCSV(t, path)
	require.Len(t, got, 3)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, records[0], got[1])
	assert.Equal(t, records[1], got[2])

	// BOM present for Excel.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])
}

func TestWriteSimpleCSVRelativeResolvesToOutputDir(t *testing.T) {
	writer, outputDir := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("nf_census.csv", []string{"facility"}, nil))

	_, err := os.Stat(filepath.Join(outputDir, "nf_census.csv"))
	assert.NoError(t, err)
}

func TestWriteSimpleCSVAbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)

	target := filepath.Join(t.TempDir(), "elsewhere", "report.csv")
	require.NoError(t, writer.WriteSimpleCSV(target, []string{"facility"}, [][]string{{"Cedar House"}}))

	got := readCSV(t, target)
	assert.Len(t, got, 2)
}

func TestWriteCSVTruncatesExisting(t *testing.T) {
	writer, outputDir := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("report.csv", []string{"h"}, [][]string{{"old"}, {"old2"}}))
	require.NoError(t, writer.WriteSimpleCSV("report.csv", []string{"h"}, [][]string{{"new"}}))

	got := readCSV(t, filepath.Join(outputDir, "report.csv"))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"new"}, got[1])
}

func TestAppendToCSV(t *testing.T) {
	writer, outputDir := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("report.csv", []string{"member_id", "date"}, [][]string{{"1", "2026-04-12"}}))
	require.NoError(t, writer.AppendToCSV("report.csv", [][]string{{"2", "2026-05-01"}}))

	got := readCSV(t, filepath.Join(outputDir, "report.csv"))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "2026-05-01"}, got[2])
}

func TestWriteCSVQuoting(t *testing.T) {
	writer, outputDir := setupTestEnv(t)

	records := [][]string{{`St. Mary's "Annex", West`, "1"}}
	require.NoError(t, writer.WriteSimpleCSV("report.csv", []string{"facility", "n"}, records))

	got := readCSV(t, filepath.Join(outputDir, "report.csv"))
	assert.Equal(t, records[0], got[1])
}

func TestWriteCSVEmptyRecords(t *testing.T) {
	writer, outputDir := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("empty.csv", []string{"facility"}, nil))

	got := readCSV(t, filepath.Join(outputDir, "empty.csv"))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"facility"}, got[0])
}
