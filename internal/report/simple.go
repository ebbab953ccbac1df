package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nao1215/ccrscan/internal/model"
)

// SimpleWriter outputs human-readable text reports with plain tables.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections without rows are shown.
	showEmpty bool

	// verbose adds the source column to observation tables.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the identity, the summary and every observation.
func (w *SimpleWriter) Write(report *model.ExtractedReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "CONSUMER CONFIDENCE REPORT")
	w.writeIdentity(&sb, report.ReportIdentity)
	w.writeCounts(&sb, model.NewSummary(report))
	w.writeObservations(&sb, "CONTAMINANTS", report.Observations)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the identity and category counts.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeIdentity(&sb, summary.Identity)
	w.writeCounts(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// WriteDiff outputs the changes between two report years.
func (w *SimpleWriter) WriteDiff(diff *model.ReportDiff) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "REPORT COMPARISON")
	sb.WriteString(fmt.Sprintf("System:     %s\n", formatString(diff.SystemID)))
	sb.WriteString(fmt.Sprintf("Years:      %s -> %s\n", formatYear(diff.PreviousYear), formatYear(diff.CurrentYear)))
	sb.WriteString(fmt.Sprintf("Violations: %d -> %d (%s)\n", diff.PreviousViolations, diff.CurrentViolations, diff.Direction))
	sb.WriteString(fmt.Sprintf("Unchanged:  %d\n\n", diff.Unchanged))

	if len(diff.Changed) > 0 || w.showEmpty {
		w.writeSection(&sb, "CHANGED")
		t := newTable(&sb)
		t.AppendHeader(table.Row{"Contaminant", "Previous", "Current", "Delta", "Units", "Violation"})
		for _, c := range diff.Changed {
			t.AppendRow(table.Row{
				c.Name,
				formatFloat(c.Previous.HighestLevel),
				formatFloat(c.Current.HighestLevel),
				formatDelta(c.HighestLevelDelta),
				formatUnit(c.Current.Units),
				formatViolation(c.Previous.Violation) + " -> " + formatViolation(c.Current.Violation),
			})
		}
		t.Render()
		sb.WriteString("\n")
	}

	w.writeObservations(&sb, "ADDED", diff.Added)
	w.writeObservations(&sb, "REMOVED", diff.Removed)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes a banner line.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", max(0, (70-len(title))/2)))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeSection writes a section title.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeIdentity writes the system identity block.
func (w *SimpleWriter) writeIdentity(sb *strings.Builder, id model.ReportIdentity) {
	sb.WriteString(fmt.Sprintf("System ID:    %s\n", formatString(id.SystemID)))
	sb.WriteString(fmt.Sprintf("System Name:  %s\n", formatString(id.SystemName)))
	sb.WriteString(fmt.Sprintf("Year:         %s\n", formatYear(id.Year)))
	sb.WriteString(fmt.Sprintf("Water Source: %s\n", formatWaterSource(id.WaterSource)))
	sb.WriteString("\n")
}

// writeCounts writes observation counts per category and the violations.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.Summary) {
	w.writeSection(sb, "SUMMARY")

	t := newTable(sb)
	t.AppendHeader(table.Row{"Category", "Count"})
	for _, c := range summary.Categories {
		t.AppendRow(table.Row{c.Category.String(), c.Count})
	}
	t.AppendFooter(table.Row{"Total", summary.TotalObservations})
	t.Render()
	sb.WriteString("\n")

	if summary.HasViolations() {
		sb.WriteString("  [!] Violations: " + strings.Join(summary.Violations, ", ") + "\n")
	} else {
		sb.WriteString("  No violations reported\n")
	}
	if summary.UnknownViolation > 0 {
		sb.WriteString("  " + strconv.Itoa(summary.UnknownViolation) + " observation(s) without a violation flag\n")
	}
	sb.WriteString("\n")
}

// writeObservations writes one table row per observation.
func (w *SimpleWriter) writeObservations(sb *strings.Builder, title string, observations []model.Observation) {
	if len(observations) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, title)
	if len(observations) == 0 {
		sb.WriteString("  None\n\n")
		return
	}

	t := newTable(sb)
	header := table.Row{"Contaminant", "Category", "Date", "Highest", "Range", "MCLG", "MCL", "Units", "Violation"}
	if w.verbose {
		header = append(header, "Source")
	}
	t.AppendHeader(header)

	for _, o := range observations {
		row := table.Row{
			o.Name,
			o.Category.String(),
			formatString(o.CollectionDate),
			formatFloat(o.HighestLevel),
			formatRange(o.RangeLow, o.RangeHigh),
			formatFloat(o.MCLG),
			formatFloat(o.MCL),
			formatUnit(o.Units),
			formatViolation(o.Violation),
		}
		if w.verbose {
			row = append(row, truncateString(formatString(o.Source), 40))
		}
		t.AppendRow(row)
	}
	t.Render()
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// newTable creates a light-style table that renders into sb.
// Headers are upper-cased; footers keep their case.
func newTable(sb *strings.Builder) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(sb)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	return t
}
