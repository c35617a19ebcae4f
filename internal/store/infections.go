package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"vendorperf/internal/period"
)

// Infection is one hospital-acquired infection record that could not be
// matched to an inpatient stay. These go to a side-channel CSV for manual
// review.
type Infection struct {
	MemberID string
	Occurred string
	Acquired string
}

// stayMatch pairs an infection with one inpatient stay of the same
// member, for nearest-discharge attribution.
type stayMatch struct {
	memberID string
	occurred string
	facility string
	gapDays  int
}

// attributionWindowDays is how close an inpatient discharge has to be to
// the infection date for the infection to be attributed to that hospital.
const attributionWindowDays = 7

// HospitalInfections attributes hospital-acquired infections recorded
// during the month to a hospital. An infection is matched to the member's
// inpatient stay whose discharge date lies within seven days of the
// infection date; when several stays qualify, the nearest discharge wins
// and each member/infection-date pair is attributed once. Infections with
// no qualifying stay are returned separately.
func (s *Store) HospitalInfections(ctx context.Context, m period.Month) (map[string]int, []Infection, error) {
	start := m.Start.Format(period.DateLayout)
	end := m.End.Format(period.DateLayout)

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.member_id, i.date_time_occurred, p.facility, p.discharge_date
		 FROM infections i
		 LEFT JOIN inpatient p ON i.member_id = p.member_id
		 WHERE i.where_infection_was_acquired = 'Hospital'
		   AND i.date_time_occurred BETWEEN ? AND ?`,
		start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query hospital infections: %w", err)
	}
	defer rows.Close()

	var matches []stayMatch
	for rows.Next() {
		var memberID, occurred string
		var facility, discharge sql.NullString
		if err := rows.Scan(&memberID, &occurred, &facility, &discharge); err != nil {
			return nil, nil, fmt.Errorf("failed to scan infection row: %w", err)
		}
		if !facility.Valid || !discharge.Valid {
			continue
		}

		occurredDay, ok := parseDay(occurred)
		if !ok {
			continue
		}
		dischargeDay, ok := parseDay(discharge.String)
		if !ok {
			continue
		}

		gap := int(occurredDay.Sub(dischargeDay).Hours() / 24)
		if gap < 0 {
			gap = -gap
		}
		if gap > attributionWindowDays {
			continue
		}

		matches = append(matches, stayMatch{
			memberID: memberID,
			occurred: occurred,
			facility: facility.String,
			gapDays:  gap,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	// Nearest discharge wins; one attribution per member and infection
	// date.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].gapDays < matches[j].gapDays
	})

	counts := make(map[string]int)
	matchedMembers := make(map[string]bool)
	seen := make(map[string]bool)
	for _, match := range matches {
		key := match.memberID + "\x00" + match.occurred
		if seen[key] {
			continue
		}
		seen[key] = true
		matchedMembers[match.memberID] = true
		counts[match.facility]++
	}

	unmatched, err := s.unmatchedInfections(ctx, start, end, matchedMembers)
	if err != nil {
		return nil, nil, err
	}

	return counts, unmatched, nil
}

// unmatchedInfections returns the month's hospital-acquired infections
// for members with no attributed stay.
func (s *Store) unmatchedInfections(ctx context.Context, start, end string, matched map[string]bool) ([]Infection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, date_time_occurred, where_infection_was_acquired
		 FROM infections
		 WHERE where_infection_was_acquired = 'Hospital'
		   AND date_time_occurred BETWEEN ? AND ?`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched infections: %w", err)
	}
	defer rows.Close()

	var unmatched []Infection
	for rows.Next() {
		var inf Infection
		if err := rows.Scan(&inf.MemberID, &inf.Occurred, &inf.Acquired); err != nil {
			return nil, fmt.Errorf("failed to scan unmatched infection: %w", err)
		}
		if matched[inf.MemberID] {
			continue
		}
		unmatched = append(unmatched, inf)
	}
	return unmatched, rows.Err()
}

// dayLayouts are the timestamp shapes the source system writes into date
// columns.
var dayLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// parseDay parses a database date or timestamp and truncates it to the
// calendar day.
func parseDay(s string) (time.Time, bool) {
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
