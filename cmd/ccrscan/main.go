// Package main provides the entry point for the ccrscan CLI.
//
// ccrscan extracts contaminant results from Consumer Confidence Reports
// that were converted to HTML, and writes one JSON report per document.
//
// Usage:
//
//	ccrscan extract <file-or-directory>...
//	ccrscan show <system-id>
//	ccrscan compare <system-id>
//
// See --help for all available options.
package main

// main is the entry point for ccrscan.
func main() {
	Execute()
}
