// Package period provides the calendar arithmetic used by the reporting
// commands: parsing report dates, computing the default "last completed
// quarter" window, and expanding a date range into the calendar months
// that become report columns.
package period

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all dates crossing the CLI and the
// database: ISO 8601 calendar dates.
const DateLayout = "2006-01-02"

// Range is an inclusive date range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Month is a single calendar month, bounded by its first and last day.
type Month struct {
	Start time.Time
	End   time.Time
}

// Key returns the YYYY-MM identifier used in report column headers.
func (m Month) Key() string {
	return m.Start.Format("2006-01")
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Validate reports an error when the range is inverted.
func (r Range) Validate() error {
	if r.End.Before(r.Start) {
		return fmt.Errorf("end date %s precedes start date %s",
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return nil
}

// LastQuarter returns the calendar quarter most recently completed before
// ref. The day of month never matters: any ref inside Q2 yields Q1 of the
// same year, and any ref inside Q1 yields Q4 of the previous year.
func LastQuarter(ref time.Time) Range {
	year := ref.Year()
	// 0-based index of the quarter containing ref.
	q := (int(ref.Month()) - 1) / 3

	q--
	if q < 0 {
		q = 3
		year--
	}

	startMonth := time.Month(q*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).AddDate(0, 0, -1)
	return Range{Start: start, End: end}
}

// MonthsBetween expands a range into the calendar months whose final day
// falls inside the range. A range shorter than a full month therefore
// yields no months, and a quarter always yields exactly three.
func MonthsBetween(r Range) []Month {
	var months []Month

	first := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for cur := first; !cur.After(r.End); cur = cur.AddDate(0, 1, 0) {
		end := cur.AddDate(0, 1, 0).AddDate(0, 0, -1)
		if end.Before(r.Start) || end.After(r.End) {
			continue
		}
		months = append(months, Month{Start: cur, End: end})
	}
	return months
}
