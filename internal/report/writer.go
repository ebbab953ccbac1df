package report

import (
	"io"
	"strconv"

	"github.com/nao1215/ccrscan/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the full report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ExtractedReport) (int, error)

	// WriteSummary outputs only the condensed summary.
	WriteSummary(summary *model.Summary) (int, error)

	// WriteDiff outputs the comparison of two report years.
	WriteDiff(diff *model.ReportDiff) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ExtractedReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(report) })
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSummary(summary) })
}

// WriteDiff outputs the diff to all configured Writers.
func (m *MultiWriter) WriteDiff(diff *model.ReportDiff) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteDiff(diff) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// absent is printed for values the source did not provide.
const absent = "-"

func formatFloat(v *float64) string {
	if v == nil {
		return absent
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func formatRange(low, high *float64) string {
	if low == nil || high == nil {
		return absent
	}
	return formatFloat(low) + " - " + formatFloat(high)
}

func formatString(s *string) string {
	if s == nil || *s == "" {
		return absent
	}
	return *s
}

func formatUnit(u *model.Unit) string {
	if u == nil {
		return absent
	}
	return u.String()
}

func formatViolation(v *bool) string {
	switch {
	case v == nil:
		return absent
	case *v:
		return "Y"
	default:
		return "N"
	}
}

func formatYear(y *int) string {
	if y == nil {
		return absent
	}
	return strconv.Itoa(*y)
}

func formatWaterSource(w *model.WaterSource) string {
	if w == nil {
		return absent
	}
	return w.String()
}

func formatDelta(d *float64) string {
	if d == nil {
		return absent
	}
	s := strconv.FormatFloat(*d, 'g', -1, 64)
	if *d > 0 {
		s = "+" + s
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
