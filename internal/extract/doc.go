// Package extract recovers structured contaminant data from rendered
// Consumer Confidence Report markup.
//
// The source documents have no schema. Tables come in at least three
// layouts (standard contaminant tables, lead and copper tables, and tables
// whose header row is itself a data row), column counts vary, and section
// labels such as "Inorganic Contaminants" are embedded in table headers.
// The engine therefore works in four stages:
//
//  1. Identity: system id and year from the file name, system name, year
//     fallback and water source from the body text.
//  2. Classification: each table's first row decides its TableKind and an
//     optional section category that overrides per-name inference.
//  3. Row interpretation: one interpreter per table kind maps cell text to an
//     Observation, coercing noisy text into numbers, ranges, units and flags.
//     Coercion never fails; unparseable values become absent.
//  4. Walking: tables are visited in document order, empty rows skipped and
//     observations deduplicated by (name, collection date) across the whole
//     document. The first occurrence wins.
//
// Extraction is a pure function of the file name and markup text. It does no
// I/O and holds no state between documents, so callers may run any number of
// extractions concurrently.
//
// Usage:
//
//	ex := extract.New(extract.WithLogger(logger))
//	report, err := ex.Extract(model.NewSourceDocument("TX1234567_2022.html", markup))
package extract
