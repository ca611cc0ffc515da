// Package analysis implements the analytical core: the filter engine, the
// country and product aggregators, and the Analyze pipeline that ties them
// together. The core performs no I/O; it computes everything from a
// canonical table and the current filter criteria on every run.
package analysis

import (
	"time"

	"ordersight/internal/errors"
	"ordersight/pkg/contracts/domain"
)

// View is the subset of a canonical table matching one set of filter
// criteria. It carries the same invariants as the table and is never empty:
// ApplyFilter reports the empty case as errors.ErrEmptyResult instead.
type View struct {
	records []domain.OrderRecord
}

// Len returns the number of rows in the view.
func (v *View) Len() int {
	return len(v.records)
}

// Records returns the rows of the view, read-only for callers.
func (v *View) Records() []domain.OrderRecord {
	return v.records
}

// ApplyFilter evaluates the conjunction of the criteria predicates against
// the table and returns the matching view. The table is not mutated. A
// selection containing the "all" sentinel expands to the full observed
// domain of that field, computed once from the distinct values present.
// When nothing matches, the returned error is errors.ErrEmptyResult, a
// condition the caller surfaces as a notice rather than a failure.
func ApplyFilter(t *domain.CanonicalTable, c domain.FilterCriteria) (*View, error) {
	countries := expandSelection(c.Countries, t.Countries)
	refs := expandSelection(c.ProductRefs, t.ProductRefs)

	matched := make([]domain.OrderRecord, 0, t.Len())
	for _, r := range t.Records() {
		if !withinRange(r.OrderDate, c.DateFrom, c.DateTo) {
			continue
		}
		if !countries[r.ShipCountry] {
			continue
		}
		if !refs[r.ProductRef] {
			continue
		}
		if !matchesVipMode(r, c.VipMode) {
			continue
		}
		matched = append(matched, r)
	}

	if len(matched) == 0 {
		return nil, errors.ErrEmptyResult
	}
	return &View{records: matched}, nil
}

// expandSelection builds the membership set for a field selection. The
// "all" sentinel anywhere in the selection expands to the observed domain.
func expandSelection(selected []string, observed func() []string) map[string]bool {
	values := selected
	for _, s := range selected {
		if s == domain.AllSentinel {
			values = observed()
			break
		}
	}
	if len(selected) == 0 {
		values = observed()
	}

	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// withinRange checks the inclusive calendar-date range. Comparison happens
// on the day, so a timestamped order date still matches its own day bounds.
func withinRange(date, from, to time.Time) bool {
	d := day(date)
	return !d.Before(day(from)) && !d.After(day(to))
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// matchesVipMode applies the strict tri-state customer-type predicate:
// the VIP filter matches raw flag 1 and the non-VIP filter raw flag 0, so
// records with any other flag value satisfy neither.
func matchesVipMode(r domain.OrderRecord, mode domain.VipMode) bool {
	switch mode {
	case domain.VipModeVipOnly:
		return r.VipFlag == 1
	case domain.VipModeNonVip:
		return r.VipFlag == 0
	default:
		return true
	}
}
