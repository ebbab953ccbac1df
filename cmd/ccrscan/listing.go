package main

import (
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nao1215/ccrscan/internal/database"
)

// timeLayout is how stored timestamps are shown.
const timeLayout = "2006-01-02 15:04"

func newListTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(header)
	return t
}

// renderSystems lists stored systems.
func renderSystems(out io.Writer, systems []database.SystemRecord) {
	t := newListTable(out, table.Row{"System ID", "Name", "Reports", "Latest Year"})
	for _, s := range systems {
		latest := "-"
		if s.LatestYear > 0 {
			latest = strconv.Itoa(s.LatestYear)
		}
		name := s.SystemName
		if name == "" {
			name = "-"
		}
		t.AppendRow(table.Row{s.SystemID, name, s.Reports, latest})
	}
	t.Render()
}

// renderHistory lists the stored reports of one system.
func renderHistory(out io.Writer, history []database.ReportMetadata) {
	t := newListTable(out, table.Row{"Year", "Document", "Contaminants", "Violations", "Stored"})
	for _, meta := range history {
		year := "-"
		if meta.Year != nil {
			year = strconv.Itoa(*meta.Year)
		}
		t.AppendRow(table.Row{year, meta.SourceName, meta.Observations, meta.Violations, formatTime(meta.Timestamp)})
	}
	t.Render()
}

// renderFailures lists recorded failures.
func renderFailures(out io.Writer, failures []database.FailureRecord) {
	t := newListTable(out, table.Row{"Document", "Reason", "Recorded"})
	for _, f := range failures {
		t.AppendRow(table.Row{f.SourceName, f.Reason, formatTime(f.Timestamp)})
	}
	t.AppendFooter(table.Row{"Total", len(failures), ""})
	t.Render()
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}
