// Command vendor-performance generates the quarterly vendor performance
// CSV reports from the PACE operational database. With no date flags it
// reports on the most recently completed calendar quarter.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vendorperf/internal/archive"
	"vendorperf/internal/config"
	"vendorperf/internal/exporter"
	"vendorperf/internal/infrastructure"
	"vendorperf/internal/period"
	"vendorperf/internal/report"
	"vendorperf/internal/store"
)

func main() {
	startDate := flag.String("start-date", "", "start date of the reporting period, formatted as YYYY-MM-DD (defaults to the start of the last quarter)")
	endDate := flag.String("end-date", "", "end date of the reporting period, formatted as YYYY-MM-DD (defaults to the end of the last quarter)")
	dbPath := flag.String("db", "", "path to the PACE SQLite database (defaults to the configured path)")
	outDir := flag.String("out", "", "output directory for report CSVs (defaults to the configured path)")
	configFile := flag.String("config", "", "path to a config.yaml (defaults to ./config.yaml when present)")
	workbook := flag.Bool("workbook", false, "also write all reports into a single Excel workbook")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override configuration.
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
		cfg.Paths.ArchiveDir = filepath.Join(*outDir, "archive")
	}
	if *workbook {
		cfg.Report.Workbook = true
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithRunID(context.Background())

	rng, err := reportingRange(*startDate, *endDate, time.Now())
	if err != nil {
		logger.ErrorContext(ctx, "Invalid reporting period", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Starting vendor performance run",
		slog.String("db", cfg.Database.Path),
		slog.String("output_dir", paths.OutputDir),
		slog.String("start_date", rng.Start.Format(period.DateLayout)),
		slog.String("end_date", rng.End.Format(period.DateLayout)),
		slog.Bool("workbook", cfg.Report.Workbook))

	st, err := store.Open(cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	runner := report.NewRunner(st, exporter.NewCSVWriter(paths))
	grids, err := runner.Run(ctx, rng)
	if err != nil {
		logger.ErrorContext(ctx, "Report run failed", "error", err)
		os.Exit(1)
	}

	if cfg.Report.Workbook {
		wb := exporter.NewWorkbookWriter(paths)
		if err := wb.WriteWorkbook(cfg.Report.WorkbookName, grids); err != nil {
			logger.ErrorContext(ctx, "Failed to write workbook", "error", err)
			os.Exit(1)
		}
		logger.InfoContext(ctx, "Workbook written", slog.String("file", cfg.Report.WorkbookName))
	}

	zipPath, err := archive.NewArchiver(paths).Archive()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to archive output", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Vendor performance run complete",
		slog.Int("reports", len(grids)),
		slog.String("archive", zipPath))
}

// reportingRange resolves the CLI date flags. Each side defaults
// independently to the last completed quarter's boundary.
func reportingRange(startFlag, endFlag string, now time.Time) (period.Range, error) {
	rng := period.LastQuarter(now)

	if startFlag != "" {
		start, err := period.ParseDate(startFlag)
		if err != nil {
			return period.Range{}, err
		}
		rng.Start = start
	}
	if endFlag != "" {
		end, err := period.ParseDate(endFlag)
		if err != nil {
			return period.Range{}, err
		}
		rng.End = end
	}

	if err := rng.Validate(); err != nil {
		return period.Range{}, err
	}
	return rng, nil
}
