// Package model defines the data structures shared across ccrscan.
//
// The central types are:
//   - SourceDocument: one report document handed to the extraction engine
//   - ReportIdentity: system id, report year, system name and water source
//   - Observation: one contaminant result (a regulatory sampling-period entry)
//   - ExtractedReport: identity plus the ordered, duplicate-free observations
//
// Optional values are pointers. A nil pointer means the value was absent in
// the source document and is serialized as JSON null, never as a zero value
// that downstream consumers could mistake for a real measurement.
package model
