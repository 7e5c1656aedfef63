// Package aggregate reduces an annotated tree and the outcomes recorded so
// far into reporter counters.
package aggregate

import (
	"stf/internal/domain"
	"stf/internal/engine"
)

// Aggregate counts Included tests by their recorded outcome. Tests without
// an outcome are pending. Other annotations are tallied separately and never
// reach pass, fail or pending.
func Aggregate(a *engine.Annotated, outcomes map[string]domain.Outcome) domain.Summary {
	var s domain.Summary
	if a == nil {
		return s
	}

	for _, e := range a.Tests() {
		s.Total++
		switch e.Annotation {
		case domain.ExcludedByMarker:
			s.ExcludedByMarker++
			continue
		case domain.SkippedBrowser:
			s.SkippedBrowser++
			continue
		case domain.ExcludedByFilter:
			s.ExcludedByFilter++
			continue
		}

		s.Included++
		switch outcomes[e.ID] {
		case domain.Passed:
			s.Pass++
		case domain.Failed:
			s.Fail++
		default:
			s.Pending++
		}
	}
	return s
}

// Entries flattens the tests of a into report lines
func Entries(a *engine.Annotated, outcomes map[string]domain.Outcome) []domain.ReportEntry {
	tests := a.Tests()
	out := make([]domain.ReportEntry, 0, len(tests))
	for _, e := range tests {
		out = append(out, domain.ReportEntry{
			ID:         e.ID,
			Annotation: e.Annotation.String(),
			Outcome:    outcomes[e.ID].String(),
			Counted:    e.Annotation.Counted(),
		})
	}
	return out
}
