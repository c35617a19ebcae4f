package store

import (
	"context"

	"vendorperf/internal/period"
)

// Every indicator counts rows (member-stays, not distinct members) per
// facility within one calendar month. Date columns hold ISO 8601 text, so
// string comparison against the month boundaries is exact.

// ALFCensus counts the residents present at each assisted living facility
// at any point during the month: admitted on or before month end and not
// discharged before month start.
func (s *Store) ALFCensus(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT facility_name, COUNT(member_id) FROM alfs
		 WHERE (discharge_date >= ? OR discharge_date IS NULL)
		   AND admission_date <= ?
		 GROUP BY facility_name`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// ALFToHospital counts discharges from each assisted living facility to
// 'Hospital/ER' during the month.
func (s *Store) ALFToHospital(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT facility_name, COUNT(member_id) FROM alfs
		 WHERE discharge_date BETWEEN ? AND ?
		   AND discharge_type = 'Hospital/ER'
		 GROUP BY facility_name`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// NFCensus counts the inpatient stays overlapping the month per facility.
func (s *Store) NFCensus(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT facility, COUNT(member_id) FROM inpatient
		 WHERE (discharge_date >= ? OR discharge_date IS NULL)
		   AND admission_date <= ?
		 GROUP BY facility`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// NFToHospital counts discharges from each nursing facility to an acute
// care or psychiatric setting during the month.
func (s *Store) NFToHospital(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT facility, COUNT(member_id) FROM nursing_home
		 WHERE discharge_date BETWEEN ? AND ?
		   AND discharge_disposition = 'Acute care hospital or psychiatric facility'
		 GROUP BY facility`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// HospitalAdmissions counts inpatient admissions during the month per
// hospital.
func (s *Store) HospitalAdmissions(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT facility, COUNT(member_id) FROM inpatient
		 WHERE admission_date BETWEEN ? AND ?
		 GROUP BY facility`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// AdmissionsResultingIn30Day counts admissions during the month whose
// discharge was followed by another admission for the same member within
// 30 days. The count is attributed to the facility of the index
// admission.
func (s *Store) AdmissionsResultingIn30Day(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT a.facility, COUNT(a.member_id) FROM inpatient a
		 WHERE a.admission_date BETWEEN ? AND ?
		   AND a.discharge_date IS NOT NULL
		   AND EXISTS (
		     SELECT 1 FROM inpatient b
		     WHERE b.member_id = a.member_id
		       AND b.admission_date > a.discharge_date
		       AND julianday(b.admission_date) - julianday(a.discharge_date) <= 30
		   )
		 GROUP BY a.facility`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// Readmissions30Day counts admissions during the month that occurred
// within 30 days of the same member's previous discharge. The count is
// attributed to the facility of the readmission.
func (s *Store) Readmissions30Day(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT a.facility, COUNT(a.member_id) FROM inpatient a
		 WHERE a.admission_date BETWEEN ? AND ?
		   AND EXISTS (
		     SELECT 1 FROM inpatient b
		     WHERE b.member_id = a.member_id
		       AND b.discharge_date IS NOT NULL
		       AND b.discharge_date < a.admission_date
		       AND julianday(a.admission_date) - julianday(b.discharge_date) <= 30
		   )
		 GROUP BY a.facility`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// ADCCensus counts members with an adult day center authorization in
// effect during the month, per vendor.
func (s *Store) ADCCensus(ctx context.Context, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT vendor, COUNT(member_id) FROM authorizations
		 WHERE service_type = 'Adult Day Center Attendance'
		   AND (approval_expiration_date >= ? OR approval_expiration_date IS NULL)
		   AND approval_effective_date <= ?
		 GROUP BY vendor`,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}

// PressureUlcers counts wounds recorded during the month for the given
// living situation, per living detail. NULL details are folded into
// "Unknown" to match the seed rows from WoundFacilities.
func (s *Store) PressureUlcers(ctx context.Context, livingSituation string, m period.Month) (map[string]int, error) {
	return s.countsByFacility(ctx,
		`SELECT COALESCE(living_detail, 'Unknown'), COUNT(member_id) FROM wounds
		 WHERE living_situation IS ?
		   AND date_time_occurred BETWEEN ? AND ?
		 GROUP BY COALESCE(living_detail, 'Unknown')`,
		livingSituation,
		m.Start.Format(period.DateLayout), m.End.Format(period.DateLayout))
}
