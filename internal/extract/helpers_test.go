package extract

import (
	"html"
	"strings"
	"testing"
)

// tableHTML renders rows as a markup table, one <td> per cell.
func tableHTML(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString("<table>\n")
	for _, row := range rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

// documentHTML wraps body fragments into a complete document.
func documentHTML(fragments ...string) string {
	return "<html><head><title>CCR</title></head><body>\n" + strings.Join(fragments, "\n") + "\n</body></html>"
}

func assertFloat(t *testing.T, field string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected %v, got absent", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s: expected %v, got %v", field, want, *got)
	}
}

func assertAbsent[T any](t *testing.T, field string, got *T) {
	t.Helper()
	if got != nil {
		t.Errorf("%s: expected absent, got %v", field, *got)
	}
}

var standardHeader = []string{
	"Contaminant", "Collection Date", "Highest Level Detected", "Range of Levels Detected",
	"MCLG", "MCL", "Units", "Violation", "Likely Source of Contamination",
}

var leadCopperHeader = []string{
	"Lead and Copper", "Date Sampled", "MCLG", "Action Level (AL)", "90th Percentile",
	"# Sites Over AL", "Units", "Violation", "Likely Source of Contamination",
}
