package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ccrscan/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "ccrscan.db"

// ReportDB provides SQLite-based storage for extracted reports.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run extract first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReportDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *ReportDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ReportDB) createTables() error {
	schema := `
	-- One row per source document; re-extraction replaces it
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_name TEXT NOT NULL UNIQUE,
		system_id TEXT,
		year INTEGER,
		system_name TEXT,
		water_source TEXT,
		observation_count INTEGER NOT NULL DEFAULT 0,
		violation_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_system ON reports(system_id, year);

	-- Observations of each report, in document order
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES reports(id),
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		collection_date TEXT,
		highest_level REAL,
		range_low REAL,
		range_high REAL,
		mclg REAL,
		mcl REAL,
		units TEXT,
		violation INTEGER,
		source TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_observations_report ON observations(report_id);
	CREATE INDEX IF NOT EXISTS idx_observations_name ON observations(name);

	-- Documents that could not be processed
	CREATE TABLE IF NOT EXISTS failures (
		source_name TEXT PRIMARY KEY,
		reason TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores the report extracted from the named source document.
// A previous report of the same document is replaced and a recorded failure
// of the document is cleared.
func (rdb *ReportDB) SaveReport(ctx context.Context, sourceName string, report *model.ExtractedReport) (err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // the original error is returned
		}
	}()

	upsert := `
	INSERT INTO reports (source_name, system_id, year, system_name, water_source,
		observation_count, violation_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_name) DO UPDATE SET
		system_id = excluded.system_id,
		year = excluded.year,
		system_name = excluded.system_name,
		water_source = excluded.water_source,
		observation_count = excluded.observation_count,
		violation_count = excluded.violation_count,
		report_json = excluded.report_json,
		timestamp = CURRENT_TIMESTAMP
	`
	if _, err = tx.ExecContext(ctx, upsert,
		sourceName,
		report.SystemID,
		report.Year,
		report.SystemName,
		report.WaterSource,
		len(report.Observations),
		report.ViolationCount(),
		string(reportJSON),
	); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	var reportID int64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM reports WHERE source_name = ?", sourceName).Scan(&reportID); err != nil {
		return fmt.Errorf("failed to get report id: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM observations WHERE report_id = ?", reportID); err != nil {
		return fmt.Errorf("failed to replace observations: %w", err)
	}

	insert := `
	INSERT INTO observations (report_id, position, name, category, collection_date,
		highest_level, range_low, range_high, mclg, mcl, units, violation, source)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, o := range report.Observations {
		if _, err = tx.ExecContext(ctx, insert,
			reportID, i, o.Name, string(o.Category), o.CollectionDate,
			o.HighestLevel, o.RangeLow, o.RangeHigh, o.MCLG, o.MCL,
			o.Units, o.Violation, o.Source,
		); err != nil {
			return fmt.Errorf("failed to save observation %q: %w", o.Name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM failures WHERE source_name = ?", sourceName); err != nil {
		return fmt.Errorf("failed to clear failure: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// GetReport retrieves the report of a system for a year.
// A nil year selects the most recent year. Returns nil when none is stored.
func (rdb *ReportDB) GetReport(ctx context.Context, systemID string, year *int) (*model.ExtractedReport, error) {
	query := `
	SELECT report_json FROM reports
	WHERE system_id = ? AND (? IS NULL OR year = ?)
	ORDER BY year DESC, timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, systemID, year, year).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return decodeReport(reportJSON)
}

// SystemRecord summarizes the reports stored for one water system.
type SystemRecord struct {
	// SystemID is the public water system id.
	SystemID string

	// SystemName is a stored name of the system, empty when none was found.
	SystemName string

	// Reports is the number of stored reports.
	Reports int

	// LatestYear is the newest report year, zero when no report has a year.
	LatestYear int
}

// ListSystems returns every system with stored reports, ordered by id.
func (rdb *ReportDB) ListSystems(ctx context.Context) ([]SystemRecord, error) {
	query := `
	SELECT system_id,
		COALESCE(MAX(system_name), ''),
		COUNT(*),
		COALESCE(MAX(year), 0)
	FROM reports
	WHERE system_id IS NOT NULL
	GROUP BY system_id
	ORDER BY system_id
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	defer rows.Close()

	systems := make([]SystemRecord, 0)
	for rows.Next() {
		var s SystemRecord
		if err := rows.Scan(&s.SystemID, &s.SystemName, &s.Reports, &s.LatestYear); err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, s)
	}

	return systems, rows.Err()
}

// ReportMetadata describes a stored report without loading it.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// SourceName is the document the report was extracted from.
	SourceName string

	// SystemID is the public water system id.
	SystemID string

	// Year is the report year, nil when unknown.
	Year *int

	// Observations and Violations are counts from the report.
	Observations int
	Violations   int

	// Timestamp is when the report was stored.
	Timestamp time.Time
}

// GetSystemHistory lists the stored reports of a system, newest year first.
func (rdb *ReportDB) GetSystemHistory(ctx context.Context, systemID string) ([]ReportMetadata, error) {
	query := `
	SELECT id, source_name, system_id, year, observation_count, violation_count, timestamp
	FROM reports
	WHERE system_id = ?
	ORDER BY year DESC, timestamp DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get system history: %w", err)
	}
	defer rows.Close()

	history := make([]ReportMetadata, 0)
	for rows.Next() {
		var meta ReportMetadata
		var year sql.NullInt64
		var timestamp string

		if err := rows.Scan(&meta.ID, &meta.SourceName, &meta.SystemID, &year,
			&meta.Observations, &meta.Violations, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		if year.Valid {
			y := int(year.Int64)
			meta.Year = &y
		}
		meta.Timestamp = parseTimestamp(timestamp)

		history = append(history, meta)
	}

	return history, rows.Err()
}

// FailureRecord is a document that could not be processed.
type FailureRecord struct {
	SourceName string
	Reason     string
	Timestamp  time.Time
}

// RecordFailure records that a document failed. A previous failure of the
// same document is replaced.
func (rdb *ReportDB) RecordFailure(ctx context.Context, sourceName, reason string) error {
	query := `
	INSERT INTO failures (source_name, reason)
	VALUES (?, ?)
	ON CONFLICT(source_name) DO UPDATE SET
		reason = excluded.reason,
		timestamp = CURRENT_TIMESTAMP
	`

	if _, err := rdb.db.ExecContext(ctx, query, sourceName, reason); err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

// ClearFailure removes the failure record of a document.
// It reports whether a record existed.
func (rdb *ReportDB) ClearFailure(ctx context.Context, sourceName string) (bool, error) {
	res, err := rdb.db.ExecContext(ctx, "DELETE FROM failures WHERE source_name = ?", sourceName)
	if err != nil {
		return false, fmt.Errorf("failed to clear failure: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to clear failure: %w", err)
	}
	return n > 0, nil
}

// ClearAllFailures removes every failure record and returns how many were removed.
func (rdb *ReportDB) ClearAllFailures(ctx context.Context) (int64, error) {
	res, err := rdb.db.ExecContext(ctx, "DELETE FROM failures")
	if err != nil {
		return 0, fmt.Errorf("failed to clear failures: %w", err)
	}
	return res.RowsAffected()
}

// ListFailures returns all failure records, newest first.
func (rdb *ReportDB) ListFailures(ctx context.Context) ([]FailureRecord, error) {
	rows, err := rdb.db.QueryContext(ctx,
		"SELECT source_name, reason, timestamp FROM failures ORDER BY timestamp DESC, source_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}
	defer rows.Close()

	failures := make([]FailureRecord, 0)
	for rows.Next() {
		var f FailureRecord
		var timestamp string
		if err := rows.Scan(&f.SourceName, &f.Reason, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		f.Timestamp = parseTimestamp(timestamp)
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

// FailedNames returns the set of document names recorded as failed.
func (rdb *ReportDB) FailedNames(ctx context.Context) (map[string]bool, error) {
	failures, err := rdb.ListFailures(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(failures))
	for _, f := range failures {
		names[f.SourceName] = true
	}
	return names, nil
}

// Stats holds database totals.
type Stats struct {
	Reports      int
	Systems      int
	Observations int
	Violations   int
	Failures     int
}

// Stats returns database totals.
func (rdb *ReportDB) Stats(ctx context.Context) (Stats, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM reports),
		(SELECT COUNT(DISTINCT system_id) FROM reports),
		(SELECT COUNT(*) FROM observations),
		(SELECT COUNT(*) FROM observations WHERE violation = 1),
		(SELECT COUNT(*) FROM failures)
	`

	var s Stats
	if err := rdb.db.QueryRowContext(ctx, query).Scan(
		&s.Reports, &s.Systems, &s.Observations, &s.Violations, &s.Failures,
	); err != nil {
		return Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return s, nil
}

func decodeReport(reportJSON string) (*model.ExtractedReport, error) {
	var report model.ExtractedReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if report.Observations == nil {
		report.Observations = make([]model.Observation, 0)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
