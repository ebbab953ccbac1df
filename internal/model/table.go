package model

// TableKind is the classification of one markup table.
type TableKind int

// Table kinds.
const (
	// TableUnrelated is decorative or non-contaminant content and is skipped.
	TableUnrelated TableKind = iota

	// TableStandard holds contaminant rows with highest level and range columns.
	TableStandard

	// TableLeadCopper holds 90th-percentile lead and copper sampling rows.
	TableLeadCopper

	// TableSectionHeader only names a section (e.g. "Inorganic Contaminants")
	// and carries no data rows of its own.
	TableSectionHeader
)

// String returns the kind name used in logs and statistics.
func (k TableKind) String() string {
	switch k {
	case TableStandard:
		return "standard"
	case TableLeadCopper:
		return "lead_copper"
	case TableSectionHeader:
		return "section_header"
	default:
		return "unrelated"
	}
}

// HasRows reports whether tables of this kind carry observation rows.
func (k TableKind) HasRows() bool {
	return k == TableStandard || k == TableLeadCopper
}
