package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/ccrscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ExtractedReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	summary := model.NewSummary(report)
	w.writeHeader(md, report.ReportIdentity)
	w.writeSummary(md, summary)
	w.writeObservations(md, "Contaminants", report.Observations)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary.Identity)
	w.writeSummary(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteDiff outputs the comparison of two years in Markdown format.
func (w *MarkdownWriter) WriteDiff(diff *model.ReportDiff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Report Comparison: " + formatString(diff.SystemID))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Previous", "Current"},
		Rows: [][]string{
			{"Year", formatYear(diff.PreviousYear), formatYear(diff.CurrentYear)},
			{"Violations", strconv.Itoa(diff.PreviousViolations), strconv.Itoa(diff.CurrentViolations)},
		},
	})
	md.PlainText("")

	switch diff.Direction {
	case model.DirectionWorsened:
		md.Warningf("Violations increased from %d to %d.", diff.PreviousViolations, diff.CurrentViolations)
	case model.DirectionImproved:
		md.Tip("Violations decreased from " + strconv.Itoa(diff.PreviousViolations) +
			" to " + strconv.Itoa(diff.CurrentViolations) + ".")
	default:
		md.Note("The number of violations did not change.")
	}
	md.PlainText("")

	md.H2("Changed")
	md.PlainText("")
	if len(diff.Changed) == 0 {
		md.PlainText("No contaminant changed.")
	} else {
		rows := make([][]string, len(diff.Changed))
		for i, c := range diff.Changed {
			rows[i] = []string{
				c.Name,
				formatFloat(c.Previous.HighestLevel),
				formatFloat(c.Current.HighestLevel),
				formatDelta(c.HighestLevelDelta),
				formatUnit(c.Current.Units),
				formatViolation(c.Previous.Violation) + " → " + formatViolation(c.Current.Violation),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Contaminant", "Previous", "Current", "Delta", "Units", "Violation"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	w.writeObservations(md, "Added", diff.Added)
	w.writeObservations(md, "Removed", diff.Removed)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and identity table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, id model.ReportIdentity) {
	md.H1("Consumer Confidence Report: " + id.Label())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"System ID", "`" + formatString(id.SystemID) + "`"},
			{"System Name", formatString(id.SystemName)},
			{"Year", formatYear(id.Year)},
			{"Water Source", formatWaterSource(id.WaterSource)},
		},
	})
	md.PlainText("")
}

// writeSummary writes category counts, the chart and the violation alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Categories)+1)
	for _, c := range summary.Categories {
		rows = append(rows, []string{c.Category.String(), strconv.Itoa(c.Count)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(summary.TotalObservations) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(summary.Categories) > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of observations per category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Contaminants by Category"),
		piechart.WithShowData(true),
	)

	for _, c := range summary.Categories {
		chart.LabelAndIntValue(c.Category.String(), uint64(c.Count)) //nolint:gosec // counts are non-negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the violation status.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.HasViolations():
		md.Cautionf(
			"%d contaminant(s) reported in violation: %s.",
			len(summary.Violations), strings.Join(summary.Violations, ", "),
		)
	case summary.TotalObservations == 0:
		md.Importantf("No contaminant data was recovered from this report.")
	case summary.UnknownViolation > 0:
		md.Note("No violations reported, but some rows carry no violation flag.")
	default:
		md.Tip("No violations reported.")
	}
	md.PlainText("")
}

// writeObservations writes a table of observations.
func (w *MarkdownWriter) writeObservations(md *markdown.Markdown, title string, observations []model.Observation) {
	md.H2(title)
	md.PlainText("")

	if len(observations) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(observations))
	for i, o := range observations {
		rows[i] = []string{
			o.Name,
			o.Category.String(),
			formatString(o.CollectionDate),
			formatFloat(o.HighestLevel),
			formatRange(o.RangeLow, o.RangeHigh),
			formatFloat(o.MCLG),
			formatFloat(o.MCL),
			formatUnit(o.Units),
			formatViolation(o.Violation),
			truncateString(formatString(o.Source), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Contaminant", "Category", "Date", "Highest", "Range", "MCLG", "MCL", "Units", "Violation", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ccrscan](https://github.com/nao1215/ccrscan)*")
}
