package extract

import (
	"strings"

	"github.com/nao1215/ccrscan/internal/model"
)

// minSniffCells is the number of cells a header row needs before its first
// cell is sniffed for a contaminant name.
const minSniffCells = 5

// knownContaminants are name fragments that mark a first row as data.
var knownContaminants = []string{
	"barium", "fluoride", "nitrate", "nitrite", "arsenic", "selenium",
	"cadmium", "chromium", "mercury", "antimony", "beryllium", "thallium",
	"cyanide", "copper", "lead", "haa5", "haloacetic", "tthm", "trihalomethane",
	"chlorite", "bromate", "benzene", "toluene", "xylene", "ethylbenzene",
	"styrene", "tetrachloroethylene", "trichloroethylene", "vinyl chloride",
	"radium", "uranium", "alpha", "beta", "gross", "coliform", "e. coli",
	"turbidity", "carbon tetrachloride", "dichloromethane", "chlorobenzene",
}

// sectionRules map first-cell fragments to a section. First match wins.
var sectionRules = []categoryKeyword{
	{model.CategoryInorganic, []string{"inorganic"}},
	{model.CategoryDisinfection, []string{"disinfection"}},
	{model.CategoryVolatileOrganic, []string{"volatile"}},
	{model.CategoryRadioactive, []string{"radioactive"}},
	{model.CategoryLeadCopper, []string{"lead", "copper"}},
}

// Classification is the verdict on one table.
type Classification struct {
	// Kind selects the row interpreter.
	Kind model.TableKind

	// StartRow is the index of the first row to interpret: 0 when the first
	// row is itself data, 1 when it is a header.
	StartRow int

	// Section overrides per-name category inference for the table's rows.
	Section *model.Category
}

// ClassifyTable classifies a table from the cell text of its first row.
//
// A header that names its layout wins. Otherwise the first cell is sniffed
// for a known contaminant, in which case the first row is data. A table that
// is neither but whose first cell names a section is TableSectionHeader;
// everything else is TableUnrelated.
func ClassifyTable(firstRow []string) Classification {
	var first string
	if len(firstRow) > 0 {
		first = firstRow[0]
	}
	section := detectSection(first)

	if kind, ok := classifyHeader(firstRow); ok {
		return Classification{Kind: kind, StartRow: 1, Section: section}
	}
	if looksLikeData(firstRow) {
		return Classification{Kind: model.TableStandard, StartRow: 0, Section: section}
	}
	if section != nil {
		return Classification{Kind: model.TableSectionHeader, StartRow: 1, Section: section}
	}
	return Classification{Kind: model.TableUnrelated}
}

// classifyHeader matches the joined header text against the known layouts.
func classifyHeader(cells []string) (model.TableKind, bool) {
	header := strings.ToLower(strings.Join(cells, " "))

	switch {
	case strings.Contains(header, "lead and copper"):
		return model.TableLeadCopper, true
	case strings.Contains(header, "collection date") &&
		(strings.Contains(header, "highest level") || strings.Contains(header, "range")):
		return model.TableStandard, true
	case strings.Contains(header, "date sampled") && strings.Contains(header, "90th percentile"):
		return model.TableLeadCopper, true
	}
	return model.TableUnrelated, false
}

// looksLikeData reports whether a row without a recognizable header starts
// with a known contaminant name.
func looksLikeData(cells []string) bool {
	if len(cells) < minSniffCells {
		return false
	}
	return containsAny(strings.ToLower(cells[0]), knownContaminants)
}

// detectSection returns the section a table's first cell names, if any.
func detectSection(firstCell string) *model.Category {
	lower := strings.ToLower(firstCell)
	for _, rule := range sectionRules {
		if containsAny(lower, rule.keywords) {
			c := rule.category
			return &c
		}
	}
	return nil
}
