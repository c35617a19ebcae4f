// Package report assembles the vendor performance indicator grids. Each
// report seeds its rows with every facility appearing in the source table,
// adds one count column per calendar month in the reporting window, and is
// written out as one CSV file consumed by the Vendor Performance grid
// spreadsheet.
package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"vendorperf/internal/infrastructure"
	"vendorperf/internal/period"
	"vendorperf/internal/store"
)

// UnmatchedInfectionsFile receives hospital-acquired infections that
// could not be matched to an inpatient stay, for manual review.
const UnmatchedInfectionsFile = "hospital_inf_without_visit.csv"

// Writer writes a finished grid to a named CSV file. Satisfied by
// exporter.CSVWriter.
type Writer interface {
	WriteSimpleCSV(filename string, headers []string, records [][]string) error
}

// Report describes one indicator: where its rows come from and how each
// month's counts are computed.
type Report struct {
	// Name labels the report in logs and workbook sheets.
	Name string
	// File is the CSV filename in the output directory.
	File string
	// Prefix names the month columns: "<prefix>-<YYYY-MM>".
	Prefix string
	// Header is the facility column header, matching the source column.
	Header string

	Seed   func(ctx context.Context) ([]string, error)
	Counts func(ctx context.Context, m period.Month) (map[string]int, error)
}

// Grid is an assembled facility × month matrix ready for output.
type Grid struct {
	Name   string
	File   string
	Header []string
	Rows   [][]string
}

// BuildGrid assembles the grid for one report: one sorted row per seed
// facility, one column per month, zero-filled where a facility has no
// counts that month. Facilities appearing in a month's counts but not in
// the seed list are dropped, mirroring a left join onto the seed rows.
func BuildGrid(r Report, months []period.Month, seed []string, counts []map[string]int) Grid {
	facilities := make([]string, len(seed))
	copy(facilities, seed)
	sort.Strings(facilities)

	header := make([]string, 0, len(months)+1)
	header = append(header, r.Header)
	for _, m := range months {
		header = append(header, fmt.Sprintf("%s-%s", r.Prefix, m.Key()))
	}

	rows := make([][]string, 0, len(facilities))
	for _, facility := range facilities {
		row := make([]string, 0, len(months)+1)
		row = append(row, facility)
		for i := range months {
			row = append(row, strconv.Itoa(counts[i][facility]))
		}
		rows = append(rows, row)
	}

	return Grid{Name: r.Name, File: r.File, Header: header, Rows: rows}
}

// Runner executes the full report set against a store.
type Runner struct {
	store  *store.Store
	writer Writer

	// unmatched accumulates side-channel infections across the months of
	// one Run.
	unmatched []store.Infection
}

// NewRunner creates a Runner writing through the given Writer.
func NewRunner(st *store.Store, w Writer) *Runner {
	return &Runner{store: st, writer: w}
}

// Definitions returns the fixed set of vendor performance reports.
func (r *Runner) Definitions() []Report {
	st := r.store
	tableSeed := func(table string) func(context.Context) ([]string, error) {
		return func(ctx context.Context) ([]string, error) {
			return st.Facilities(ctx, table)
		}
	}
	woundSeed := func(situation string) func(context.Context) ([]string, error) {
		return func(ctx context.Context) ([]string, error) {
			return st.WoundFacilities(ctx, situation)
		}
	}
	ulcers := func(situation string) func(context.Context, period.Month) (map[string]int, error) {
		return func(ctx context.Context, m period.Month) (map[string]int, error) {
			return st.PressureUlcers(ctx, situation, m)
		}
	}

	return []Report{
		{
			Name: "ALF Census", File: "alf_census.csv",
			Prefix: "census", Header: "facility_name",
			Seed: tableSeed("alfs"), Counts: st.ALFCensus,
		},
		{
			Name: "Hospital from ALF", File: "hosp_from_alf.csv",
			Prefix: "hosp_admits", Header: "facility_name",
			Seed: tableSeed("alfs"), Counts: st.ALFToHospital,
		},
		{
			Name: "NF Census", File: "nf_census.csv",
			Prefix: "census", Header: "facility",
			Seed: tableSeed("nursing_home"), Counts: st.NFCensus,
		},
		{
			Name: "Hospital from NF", File: "hosp_from_nf.csv",
			Prefix: "hosp_admits", Header: "facility",
			Seed: tableSeed("nursing_home"), Counts: st.NFToHospital,
		},
		{
			Name: "Hospital Admissions", File: "hosp_admissions.csv",
			Prefix: "admissions", Header: "facility",
			Seed: tableSeed("inpatient"), Counts: st.HospitalAdmissions,
		},
		{
			Name: "Results in 30 Day Readmit", File: "hosp_admit_results_in_30day.csv",
			Prefix: "results_in_30dr", Header: "facility",
			Seed: tableSeed("inpatient"), Counts: st.AdmissionsResultingIn30Day,
		},
		{
			Name: "30 Day Readmits", File: "hosp_30_day_readmits.csv",
			Prefix: "30dr", Header: "facility",
			Seed: tableSeed("inpatient"), Counts: st.Readmissions30Day,
		},
		{
			Name: "Hospital Infections", File: "hosp_infections.csv",
			Prefix: "infections", Header: "facility",
			Seed: tableSeed("inpatient"), Counts: r.infectionCounts,
		},
		{
			Name: "ADC Census", File: "adc_census.csv",
			Prefix: "adc_census", Header: "vendor",
			Seed: tableSeed("authorizations"), Counts: st.ADCCensus,
		},
		{
			Name: "SNF Pressure Ulcers", File: "snf_pulcers.csv",
			Prefix: "snf_pulcers", Header: "living_detail",
			Seed: woundSeed("SNF"), Counts: ulcers("SNF"),
		},
		{
			Name: "ALF Pressure Ulcers", File: "alf_pulcers.csv",
			Prefix: "alf_pulcers", Header: "living_detail",
			Seed: woundSeed("ALF"), Counts: ulcers("ALF"),
		},
	}
}

// Run builds and writes every report for the range and returns the
// assembled grids for optional workbook output.
func (r *Runner) Run(ctx context.Context, rng period.Range) ([]Grid, error) {
	logger := infrastructure.LoggerWithContext(ctx)
	months := period.MonthsBetween(rng)

	logger.InfoContext(ctx, "running vendor performance reports",
		"start", rng.Start.Format(period.DateLayout),
		"end", rng.End.Format(period.DateLayout),
		"months", len(months))

	r.unmatched = nil

	var grids []Grid
	for _, rep := range r.Definitions() {
		grid, err := r.build(ctx, rep, months)
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", rep.Name, err)
		}

		if err := r.writer.WriteSimpleCSV(grid.File, grid.Header, grid.Rows); err != nil {
			return nil, fmt.Errorf("report %s: %w", rep.Name, err)
		}

		logger.InfoContext(ctx, "report written",
			"report", rep.Name,
			"file", grid.File,
			"facilities", len(grid.Rows))

		grids = append(grids, grid)
	}

	if err := r.writeUnmatched(ctx); err != nil {
		return nil, err
	}

	return grids, nil
}

// build seeds and assembles a single report grid.
func (r *Runner) build(ctx context.Context, rep Report, months []period.Month) (Grid, error) {
	seed, err := rep.Seed(ctx)
	if err != nil {
		return Grid{}, fmt.Errorf("seeding facilities: %w", err)
	}

	counts := make([]map[string]int, len(months))
	for i, m := range months {
		c, err := rep.Counts(ctx, m)
		if err != nil {
			return Grid{}, fmt.Errorf("month %s: %w", m.Key(), err)
		}
		counts[i] = c
	}

	return BuildGrid(rep, months, seed, counts), nil
}

// infectionCounts adapts the store's two-result infections query to the
// common Counts shape, collecting the unmatched rows on the side.
func (r *Runner) infectionCounts(ctx context.Context, m period.Month) (map[string]int, error) {
	counts, unmatched, err := r.store.HospitalInfections(ctx, m)
	if err != nil {
		return nil, err
	}
	r.unmatched = append(r.unmatched, unmatched...)
	return counts, nil
}

// writeUnmatched writes the side-channel CSV of infections with no
// attributable stay. Written even when empty so downstream review always
// finds the file.
func (r *Runner) writeUnmatched(ctx context.Context) error {
	records := make([][]string, 0, len(r.unmatched))
	for _, inf := range r.unmatched {
		records = append(records, []string{inf.MemberID, inf.Occurred, inf.Acquired})
	}

	headers := []string{"member_id", "date_time_occurred", "where_infection_was_acquired"}
	if err := r.writer.WriteSimpleCSV(UnmatchedInfectionsFile, headers, records); err != nil {
		return fmt.Errorf("unmatched infections: %w", err)
	}

	infrastructure.LoggerWithContext(ctx).InfoContext(ctx, "unmatched infections written",
		"file", UnmatchedInfectionsFile,
		"count", len(records))
	return nil
}
