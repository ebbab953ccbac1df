package model

import "strings"

// Observation is one contaminant result within a report.
//
// Every optional field is a pointer so that "absent in the source" stays
// distinguishable from a measured zero.
type Observation struct {
	// Name is the contaminant name, whitespace-collapsed and never empty.
	Name string `json:"name"`

	// Category is the regulatory group of the contaminant.
	Category Category `json:"category"`

	// CollectionDate is the sampling period text as printed in the report.
	// It is opaque and never parsed as a date.
	CollectionDate *string `json:"collection_date"`

	// HighestLevel is the highest level detected (or the 90th percentile
	// for lead and copper tables).
	HighestLevel *float64 `json:"highest_level"`

	// RangeLow and RangeHigh are present only when the range cell encodes
	// "<low> - <high>".
	RangeLow  *float64 `json:"range_low"`
	RangeHigh *float64 `json:"range_high"`

	// MCLG is the maximum contaminant level goal.
	MCLG *float64 `json:"mclg"`

	// MCL is the maximum contaminant level (the action level for lead and copper).
	MCL *float64 `json:"mcl"`

	// Units is set only for whitelisted units.
	Units *Unit `json:"units"`

	// Violation is set only when the source cell reads exactly Y or N.
	Violation *bool `json:"violation"`

	// Source is the likely source of contamination, kept only when longer than 10 characters.
	Source *string `json:"source"`
}

// ObservationKey identifies an observation for deduplication.
type ObservationKey struct {
	Name           string
	CollectionDate string
}

// String returns a printable form of the key.
func (k ObservationKey) String() string {
	if k.CollectionDate == "" {
		return k.Name
	}
	return k.Name + " @ " + k.CollectionDate
}

// Key returns the deduplication key of the observation.
// An absent collection date and an empty one share the same key.
func (o Observation) Key() ObservationKey {
	key := ObservationKey{Name: o.Name}
	if o.CollectionDate != nil {
		key.CollectionDate = *o.CollectionDate
	}
	return key
}

// IsViolation reports whether the observation is flagged as a violation.
func (o Observation) IsViolation() bool {
	return o.Violation != nil && *o.Violation
}

// NormalizedName returns the lowercased name used to match the same
// contaminant across reports.
func (o Observation) NormalizedName() string {
	return strings.ToLower(strings.Join(strings.Fields(o.Name), " "))
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
