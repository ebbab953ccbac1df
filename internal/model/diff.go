package model

import "sort"

// Diff directions.
const (
	DirectionWorsened  = "worsened"
	DirectionImproved  = "improved"
	DirectionUnchanged = "unchanged"
)

// ObservationChange pairs the same contaminant in two reports.
type ObservationChange struct {
	Name     string      `json:"name"`
	Previous Observation `json:"previous"`
	Current  Observation `json:"current"`

	// HighestLevelDelta is current minus previous highest level,
	// present only when both values are present.
	HighestLevelDelta *float64 `json:"highest_level_delta"`

	// ViolationChanged is true when the Y/N flag differs.
	ViolationChanged bool `json:"violation_changed"`
}

// ReportDiff compares two reports of the same water system.
type ReportDiff struct {
	SystemID     *string `json:"system_id"`
	PreviousYear *int    `json:"previous_year"`
	CurrentYear  *int    `json:"current_year"`

	Added     []Observation       `json:"added"`
	Removed   []Observation       `json:"removed"`
	Changed   []ObservationChange `json:"changed"`
	Unchanged int                 `json:"unchanged"`

	PreviousViolations int `json:"previous_violations"`
	CurrentViolations  int `json:"current_violations"`

	// Direction is worsened, improved or unchanged by violation count.
	Direction string `json:"direction"`
}

// CompareReports compares previous and current reports.
// Observations are matched by case-insensitive, whitespace-collapsed name;
// when a report carries the same name several times (different collection
// dates) the first occurrence is used.
func CompareReports(previous, current *ExtractedReport) *ReportDiff {
	d := &ReportDiff{
		SystemID:           current.SystemID,
		PreviousYear:       previous.Year,
		CurrentYear:        current.Year,
		Added:              make([]Observation, 0),
		Removed:            make([]Observation, 0),
		Changed:            make([]ObservationChange, 0),
		PreviousViolations: previous.ViolationCount(),
		CurrentViolations:  current.ViolationCount(),
	}

	prev := indexByName(previous.Observations)
	curr := indexByName(current.Observations)

	for _, o := range firstByName(current.Observations) {
		p, ok := prev[o.NormalizedName()]
		if !ok {
			d.Added = append(d.Added, o)
			continue
		}
		if change, differs := compareObservation(p, o); differs {
			d.Changed = append(d.Changed, change)
		} else {
			d.Unchanged++
		}
	}

	for _, o := range firstByName(previous.Observations) {
		if _, ok := curr[o.NormalizedName()]; !ok {
			d.Removed = append(d.Removed, o)
		}
	}

	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Name < d.Changed[j].Name })

	switch {
	case d.CurrentViolations > d.PreviousViolations:
		d.Direction = DirectionWorsened
	case d.CurrentViolations < d.PreviousViolations:
		d.Direction = DirectionImproved
	default:
		d.Direction = DirectionUnchanged
	}

	return d
}

// indexByName maps normalized names to their first observation.
func indexByName(observations []Observation) map[string]Observation {
	m := make(map[string]Observation, len(observations))
	for _, o := range observations {
		key := o.NormalizedName()
		if _, ok := m[key]; !ok {
			m[key] = o
		}
	}
	return m
}

// firstByName keeps the first observation of each normalized name, in order.
func firstByName(observations []Observation) []Observation {
	seen := make(map[string]bool, len(observations))
	out := make([]Observation, 0, len(observations))
	for _, o := range observations {
		key := o.NormalizedName()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

func compareObservation(previous, current Observation) (ObservationChange, bool) {
	change := ObservationChange{
		Name:     current.Name,
		Previous: previous,
		Current:  current,
	}

	differs := false
	if !equalFloat(previous.HighestLevel, current.HighestLevel) {
		differs = true
		if previous.HighestLevel != nil && current.HighestLevel != nil {
			change.HighestLevelDelta = Ptr(*current.HighestLevel - *previous.HighestLevel)
		}
	}
	if !equalUnit(previous.Units, current.Units) {
		differs = true
	}
	if previous.IsViolation() != current.IsViolation() {
		change.ViolationChanged = true
		differs = true
	}

	return change, differs
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalUnit(a, b *Unit) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
