package model

// ExtractionStats records how a document was walked.
// It is diagnostic data and is not part of the report output contract.
type ExtractionStats struct {
	// Tables is the number of tables found in the document.
	Tables int `json:"tables"`

	// TablesByKind counts tables per classification.
	TablesByKind map[string]int `json:"tables_by_kind"`

	// RowsExamined counts non-empty rows handed to a row interpreter.
	RowsExamined int `json:"rows_examined"`

	// RowsRejected counts rows the interpreter refused (too short, label rows).
	RowsRejected int `json:"rows_rejected"`

	// DuplicatesDropped lists keys of rows dropped because an observation
	// with the same name and collection date was already kept.
	DuplicatesDropped []ObservationKey `json:"duplicates_dropped,omitempty"`
}

// NewExtractionStats returns zeroed statistics.
func NewExtractionStats() ExtractionStats {
	return ExtractionStats{
		TablesByKind: make(map[string]int),
	}
}

// CountTable records one classified table.
func (s *ExtractionStats) CountTable(kind TableKind) {
	if s.TablesByKind == nil {
		s.TablesByKind = make(map[string]int)
	}
	s.Tables++
	s.TablesByKind[kind.String()]++
}
