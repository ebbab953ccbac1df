package extract

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/ccrscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// filenamePattern matches "TX<digits>_<year>" followed by an extension or nothing.
	filenamePattern = regexp.MustCompile(`^(TX\d+)_(\d{4})(?:\.|$)`)

	// headerPattern captures the year and system name of the report header
	// sentence. The name ends at the first "This", "provides" or line break.
	headerPattern = regexp.MustCompile(
		`(?is)(\d{4})\s+Consumer\s+Confidence\s+Report\s+for\s+Public\s+Water\s+System\s+(.+?)(?:\s+This|\s+provides|\n)`,
	)

	// waterSourcePattern captures the water source sentence.
	waterSourcePattern = regexp.MustCompile(`(?i)provides\s+(Ground\s+Water|Surface\s+Water)\s+from`)
)

// ParseIdentity recovers the report identity from the document name and its
// body text. Any pattern that does not match leaves its fields absent.
//
// The file name is binding: a year taken from the file name is never
// replaced by the year printed in the body, which only fills an absent year.
func ParseIdentity(name, text string) model.ReportIdentity {
	var id model.ReportIdentity

	systemID, year := ParseFilename(name)
	if systemID != "" {
		id.SystemID = &systemID
	}
	id.Year = year

	if year, systemName, ok := parseHeader(text); ok {
		if id.Year == nil {
			id.Year = year
		}
		id.SystemName = systemName
	}

	id.WaterSource = parseWaterSource(text)

	return id
}

// ParseFilename extracts the system id and year from a document name such
// as "TX1234567_2022.html". Directory components are ignored.
func ParseFilename(name string) (string, *int) {
	m := filenamePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", nil
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return "", nil
	}
	return m[1], &year
}

// parseHeader finds "<year> Consumer Confidence Report for Public Water System <name>".
// The name is dropped when it is empty or the literal "null".
func parseHeader(text string) (*int, *string, bool) {
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, false
	}

	var year *int
	if y, err := strconv.Atoi(m[1]); err == nil {
		year = &y
	}

	var systemName *string
	if name := collapseWhitespace(m[2]); name != "" && !strings.EqualFold(name, "null") {
		systemName = &name
	}

	return year, systemName, true
}

// parseWaterSource finds "provides Ground Water from" or "provides Surface Water from".
func parseWaterSource(text string) *model.WaterSource {
	m := waterSourcePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	// A Caser is stateful, so each call gets its own.
	source := model.WaterSource(cases.Title(language.English).String(collapseWhitespace(m[1])))
	return &source
}
