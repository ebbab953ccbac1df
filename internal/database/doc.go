// Package database provides SQLite-based storage for extracted reports.
//
// The ReportDB stores:
//   - one row per source document with the report record as JSON
//   - the report's observations flattened into rows for ad hoc SQL
//   - documents that failed to process, so later runs can skip them
//
// SQLite is accessed through modernc.org/sqlite, which needs no cgo. The
// database is a single file under the user's data directory and runs in
// WAL mode.
package database
