package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/ccrscan/internal/model"
)

// minSourceLength is the length a source note must exceed to be kept.
// Shorter cells are column filler such as "N/A" or a stray footnote mark.
const minSourceLength = 10

// rangePattern matches "<number> - <number>" at the start of a cell.
var rangePattern = regexp.MustCompile(`^([\d.]+)\s*-\s*([\d.]+)`)

// decimalPattern is decimal float syntax with single underscores allowed
// between digits ("1_000"). Hex floats such as "0x1p4" do not match.
var decimalPattern = regexp.MustCompile(
	`^[+-]?(?:\d(?:_?\d)*(?:\.(?:\d(?:_?\d)*)?)?|\.\d(?:_?\d)*)(?:[eE][+-]?\d(?:_?\d)*)?$`,
)

// missingValues are cell texts that mean "no value".
var missingValues = map[string]bool{
	"":    true,
	"na":  true,
	"n/a": true,
	"-":   true,
}

// standardUnits is the unit whitelist for standard contaminant tables.
var standardUnits = unitSet(
	model.UnitPPM, model.UnitPPB, model.UnitPCIL, model.UnitNTU, model.UnitMREM,
	model.UnitMFL, model.UnitPPT, model.UnitPPQ, model.UnitMGL,
)

// leadCopperUnits is the unit whitelist for lead and copper tables.
var leadCopperUnits = unitSet(model.UnitPPM, model.UnitPPB)

func unitSet(units ...model.Unit) map[string]model.Unit {
	set := make(map[string]model.Unit, len(units))
	for _, u := range units {
		set[string(u)] = u
	}
	return set
}

// ParseNumeric coerces cell text to a number.
// Missing markers ("", "NA", "N/A", "-") and anything that is not a finite
// decimal number yield nil. It never fails.
func ParseNumeric(s string) *float64 {
	s = strings.TrimSpace(s)
	if missingValues[strings.ToLower(s)] || !decimalPattern.MatchString(s) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseRange coerces "<low> - <high>" to its bounds. Both bounds are nil
// unless the trimmed text starts with two numbers joined by a hyphen.
func ParseRange(s string) (low, high *float64) {
	m := rangePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, nil
	}
	lo, errLow := strconv.ParseFloat(m[1], 64)
	hi, errHigh := strconv.ParseFloat(m[2], 64)
	if errLow != nil || errHigh != nil {
		return nil, nil
	}
	return &lo, &hi
}

// ParseUnit returns the unit when the trimmed, lowercased text is exactly
// one of the standard units.
func ParseUnit(s string) *model.Unit {
	return parseUnitFrom(s, standardUnits)
}

func parseUnitFrom(s string, allowed map[string]model.Unit) *model.Unit {
	u, ok := allowed[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return nil
	}
	return &u
}

// ParseViolation returns true for "Y", false for "N" and nil otherwise.
func ParseViolation(s string) *bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y":
		v := true
		return &v
	case "N":
		v := false
		return &v
	}
	return nil
}

// parseMCLG is ParseNumeric except that "no goal" text is absent.
func parseMCLG(s string) *float64 {
	if strings.Contains(strings.ToLower(s), "no goal") {
		return nil
	}
	return ParseNumeric(s)
}

// parseSource keeps free text longer than minSourceLength characters.
func parseSource(s string) *string {
	s = collapseWhitespace(s)
	if utf8.RuneCountInString(s) <= minSourceLength {
		return nil
	}
	return &s
}

// parseText trims s and returns nil when nothing is left.
func parseText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// collapseWhitespace trims s and reduces internal whitespace runs to one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
