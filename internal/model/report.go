package model

import "strconv"

// ReportIdentity is the metadata recovered from the file name and body text.
type ReportIdentity struct {
	// SystemID is the public water system id (e.g. "TX1234567").
	// Nil when the file name does not follow the TX<digits>_<year> pattern.
	SystemID *string `json:"system_id"`

	// SystemName is the human-readable system name from the report header.
	SystemName *string `json:"system_name"`

	// Year is the report year.
	Year *int `json:"year"`

	// WaterSource is the primary water source type.
	WaterSource *WaterSource `json:"water_source"`
}

// ID returns the system id, or "" when it is absent.
func (id ReportIdentity) ID() string {
	if id.SystemID == nil {
		return ""
	}
	return *id.SystemID
}

// Label returns "<system id> <year>" for log and display purposes.
func (id ReportIdentity) Label() string {
	label := id.ID()
	if label == "" {
		label = "(unknown system)"
	}
	if id.Year != nil {
		label += " " + strconv.Itoa(*id.Year)
	}
	return label
}

// ExtractedReport is the structured result for one source document.
// It is built once per document and never mutated afterwards.
//
// The JSON form is flat: system_id, system_name, year, water_source and
// contaminants. Stats is diagnostic only and not part of the output.
type ExtractedReport struct {
	ReportIdentity

	// Observations are the deduplicated contaminant results in document order.
	Observations []Observation `json:"contaminants"`

	// Stats describes how the document was walked.
	Stats ExtractionStats `json:"-"`
}

// NewExtractedReport assembles a report from its identity and observations.
// A nil observation slice becomes an empty one so that the JSON output is
// always an array.
func NewExtractedReport(identity ReportIdentity, observations []Observation, stats ExtractionStats) *ExtractedReport {
	if observations == nil {
		observations = make([]Observation, 0)
	}
	return &ExtractedReport{
		ReportIdentity: identity,
		Observations:   observations,
		Stats:          stats,
	}
}

// ViolationCount returns the number of observations flagged as violations.
func (r *ExtractedReport) ViolationCount() int {
	n := 0
	for _, o := range r.Observations {
		if o.IsViolation() {
			n++
		}
	}
	return n
}

// HasObservations reports whether any contaminant data was recovered.
func (r *ExtractedReport) HasObservations() bool {
	return len(r.Observations) > 0
}
