package extract

import (
	"strings"

	"github.com/nao1215/ccrscan/internal/model"
)

// minRowCells is the number of cells a row needs to be interpreted.
const minRowCells = 7

// Cell positions shared by both layouts.
const (
	cellName = iota
	cellCollectionDate
)

// Cell positions past the layout-specific columns.
const (
	cellUnits     = 6
	cellViolation = 7
	cellSource    = 8
)

var (
	// standardLabels are first-cell texts of header rows repeated inside a table.
	standardLabels = map[string]bool{
		"contaminant":   true,
		"contamination": true,
	}

	// sectionLabels are fragments of section and group titles that appear as
	// rows of a standard table.
	sectionLabels = []string{
		"inorganic contaminants", "disinfection by-products",
		"volatile organic", "radioactive", "coliform",
	}
)

// rowInterpreter maps the cells of one row to an observation. It reports
// false when the row carries no observation.
type rowInterpreter func(cells []string, section *model.Category) (model.Observation, bool)

// interpreterFor returns the interpreter for a table kind, or nil when
// the kind has no rows (see TableKind.HasRows).
func interpreterFor(kind model.TableKind) rowInterpreter {
	switch kind {
	case model.TableStandard:
		return interpretStandardRow
	case model.TableLeadCopper:
		return interpretLeadCopperRow
	default:
		return nil
	}
}

// interpretStandardRow reads
// name | collection date | highest level | range | MCLG | MCL | units | violation | source.
func interpretStandardRow(cells []string, section *model.Category) (model.Observation, bool) {
	if len(cells) < minRowCells {
		return model.Observation{}, false
	}

	name := collapseWhitespace(cells[cellName])
	lower := strings.ToLower(name)
	if name == "" || standardLabels[lower] || containsAny(lower, sectionLabels) {
		return model.Observation{}, false
	}

	category := Categorize(name)
	if section != nil {
		category = *section
	}

	obs := model.Observation{
		Name:           name,
		Category:       category,
		CollectionDate: parseText(cells[cellCollectionDate]),
		HighestLevel:   ParseNumeric(cells[2]),
		MCLG:           parseMCLG(cells[4]),
		MCL:            ParseNumeric(cells[5]),
		Units:          ParseUnit(cells[cellUnits]),
	}
	obs.RangeLow, obs.RangeHigh = ParseRange(cells[3])
	fillTrailing(&obs, cells)

	return obs, true
}

// interpretLeadCopperRow reads
// name | date sampled | MCLG | action level | 90th percentile | sites over | units | violation | source.
// Every row is categorized as lead and copper.
func interpretLeadCopperRow(cells []string, _ *model.Category) (model.Observation, bool) {
	if len(cells) < minRowCells {
		return model.Observation{}, false
	}

	name := collapseWhitespace(cells[cellName])
	if name == "" || strings.EqualFold(name, "lead and copper") {
		return model.Observation{}, false
	}

	obs := model.Observation{
		Name:           name,
		Category:       model.CategoryLeadCopper,
		CollectionDate: parseText(cells[cellCollectionDate]),
		MCLG:           ParseNumeric(cells[2]),
		MCL:            ParseNumeric(cells[3]),
		HighestLevel:   ParseNumeric(cells[4]),
		Units:          parseUnitFrom(cells[cellUnits], leadCopperUnits),
	}
	fillTrailing(&obs, cells)

	return obs, true
}

// fillTrailing sets the optional violation and source columns.
func fillTrailing(obs *model.Observation, cells []string) {
	if len(cells) > cellViolation {
		obs.Violation = ParseViolation(cells[cellViolation])
	}
	if len(cells) > cellSource {
		obs.Source = parseSource(cells[cellSource])
	}
}
