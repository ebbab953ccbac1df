// Package report renders extracted reports.
//
// This package contains writers for different output formats:
//   - JSONWriter: the per-document output record consumed downstream
//   - MarkdownWriter: documentation-friendly output with a category chart
//   - SimpleWriter: plain-text tables for terminal display
//
// Every writer renders an ExtractedReport, its Summary and a ReportDiff
// between two years of the same water system.
package report
