// Package store provides read-only access to the PACE operational
// database for the vendor performance reports. The schema is owned by the
// upstream data loader; this package only issues the aggregate queries the
// reports need and returns plain Go values.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a single read-only SQLite connection. One Store is opened
// per run and closed when the run finishes.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the SQLite database at path in read-only mode. The database
// file must already exist; a missing file is an error rather than an
// implicitly created empty database.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database file not accessible: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// facilityColumns maps the tables the reports seed their rows from to
// their facility column, and guards the identifiers interpolated into
// the DISTINCT query.
var facilityColumns = map[string]string{
	"alfs":           "facility_name",
	"nursing_home":   "facility",
	"inpatient":      "facility",
	"authorizations": "vendor",
}

// facilityFilters scopes the seed query for tables where only a subset of
// rows belongs to the report.
var facilityFilters = map[string]string{
	"authorizations": "WHERE service_type = 'Adult Day Center Attendance'",
	"inpatient":      "WHERE admission_type = 'Acute Hospital' OR admission_type = 'Psych Unit / Facility'",
}

// Facilities returns the distinct facility values appearing anywhere in
// table, regardless of date. Rows with a NULL facility are skipped.
func (s *Store) Facilities(ctx context.Context, table string) ([]string, error) {
	column, ok := facilityColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown facility table %q", table)
	}

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s %s", column, table, facilityFilters[table])
	s.logger.DebugContext(ctx, "querying facilities", "table", table, "column", column)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities from %s: %w", table, err)
	}
	defer rows.Close()

	var facilities []string
	for rows.Next() {
		var facility sql.NullString
		if err := rows.Scan(&facility); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		if !facility.Valid {
			continue
		}
		facilities = append(facilities, facility.String)
	}
	return facilities, rows.Err()
}

// WoundFacilities returns the distinct living_detail values for wounds
// recorded in the given living situation (e.g. "SNF" or "ALF"). A NULL
// detail surfaces as "Unknown" so those wounds still land in a row.
func (s *Store) WoundFacilities(ctx context.Context, livingSituation string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT COALESCE(living_detail, 'Unknown') FROM wounds
		 WHERE living_situation IS ?`, livingSituation)
	if err != nil {
		return nil, fmt.Errorf("failed to query wound facilities: %w", err)
	}
	defer rows.Close()

	var facilities []string
	for rows.Next() {
		var facility string
		if err := rows.Scan(&facility); err != nil {
			return nil, fmt.Errorf("failed to scan wound facility: %w", err)
		}
		facilities = append(facilities, facility)
	}
	return facilities, rows.Err()
}

// countsByFacility runs a query whose result set is (facility, count)
// pairs and collects it into a map. NULL facilities are skipped.
func (s *Store) countsByFacility(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var facility sql.NullString
		var n int
		if err := rows.Scan(&facility, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		if !facility.Valid {
			continue
		}
		counts[facility.String] = n
	}
	return counts, rows.Err()
}
