package model

import "sort"

// CategoryCount is the number of observations in one category.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Summary is a condensed view of an ExtractedReport for display.
//
// It plays the role a dashboard row does: counts per category and the list
// of contaminants that were reported in violation.
type Summary struct {
	// Identity is copied from the report.
	Identity ReportIdentity `json:"identity"`

	// TotalObservations is the number of contaminant results.
	TotalObservations int `json:"total_observations"`

	// Categories lists non-zero category counts in display order.
	Categories []CategoryCount `json:"categories"`

	// Violations lists names of contaminants flagged as violations, sorted.
	Violations []string `json:"violations"`

	// UnknownViolation counts observations without a Y/N violation flag.
	UnknownViolation int `json:"unknown_violation"`
}

// NewSummary builds a Summary from a report.
func NewSummary(r *ExtractedReport) *Summary {
	s := &Summary{
		Identity:          r.ReportIdentity,
		TotalObservations: len(r.Observations),
		Categories:        make([]CategoryCount, 0),
		Violations:        make([]string, 0),
	}

	counts := make(map[Category]int)
	for _, o := range r.Observations {
		counts[o.Category]++
		switch {
		case o.Violation == nil:
			s.UnknownViolation++
		case *o.Violation:
			s.Violations = append(s.Violations, o.Name)
		}
	}

	for _, c := range Categories() {
		if n := counts[c]; n > 0 {
			s.Categories = append(s.Categories, CategoryCount{Category: c, Count: n})
		}
	}
	sort.Strings(s.Violations)

	return s
}

// HasViolations reports whether any contaminant was in violation.
func (s *Summary) HasViolations() bool {
	return len(s.Violations) > 0
}
