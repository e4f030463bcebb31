package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/moltwatch/censyscollect/internal/model"
)

// RunDB provides SQLite-based storage for collection run history.
// It manages connection pooling and provides methods for saving and
// querying past runs.
//
// We use a single database file for all runs rather than one file per
// label. This keeps the compare command a single-file query and makes
// backup a single-file copy.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "censyscollect.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses URI-style modifiers: mode=rw refuses to
	// create a new file, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
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
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one record per collection run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		label TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages INTEGER DEFAULT 0,
		hosts INTEGER DEFAULT 0,
		rows INTEGER DEFAULT 0,
		jsonl_path TEXT,
		csv_path TEXT,
		error_note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Run hosts record which IPs each run observed, for run-to-run diffs
	CREATE TABLE IF NOT EXISTS run_hosts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		ip TEXT NOT NULL,
		UNIQUE(run_id, ip)
	);

	CREATE INDEX IF NOT EXISTS idx_run_hosts_run ON run_hosts(run_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a completed run and the distinct IPs it observed.
// The run's ID field is set to the new database identifier.
func (rdb *RunDB) SaveRun(ctx context.Context, run *model.CollectionRun) error {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (query, label, started_at, pages, hosts, rows, jsonl_path, csv_path, error_note)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Query,
		run.Label,
		run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		run.Pages,
		run.Hosts,
		run.Rows,
		run.JSONLPath,
		run.CSVPath,
		run.ErrorNote,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	for ip := range runIPs(run) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_hosts (run_id, ip) VALUES (?, ?) ON CONFLICT(run_id, ip) DO NOTHING`,
			id, ip,
		); err != nil {
			return fmt.Errorf("failed to insert run host: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	return nil
}

// runIPs returns the set of distinct non-empty IPs observed by the run.
func runIPs(run *model.CollectionRun) map[string]struct{} {
	ips := make(map[string]struct{}, len(run.Documents))
	for i := range run.Documents {
		if ip := run.Documents[i].IP; ip != nil && *ip != "" {
			ips[*ip] = struct{}{}
		}
	}
	return ips
}

// RunSummary contains the stored metadata of one run, without the host
// list. This is what the compare and history views display.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64 `json:"id"`

	// Query is the search query the run executed.
	Query string `json:"query"`

	// Label is the run's output label.
	Label string `json:"label"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Pages, Hosts, and Rows are the run counters.
	Pages int `json:"pages"`
	Hosts int `json:"hosts"`
	Rows  int `json:"rows"`

	// JSONLPath and CSVPath are the artifact paths the run wrote.
	JSONLPath string `json:"jsonl_path,omitempty"`
	CSVPath   string `json:"csv_path,omitempty"`

	// ErrorNote records why the run stopped early, if it did.
	ErrorNote string `json:"error_note,omitempty"`
}

// ListRuns returns stored runs ordered newest first, optionally
// filtered by label. An empty label matches all runs.
func (rdb *RunDB) ListRuns(ctx context.Context, label string) ([]RunSummary, error) {
	query := `
	SELECT id, query, label, started_at, pages, hosts, rows, jsonl_path, csv_path, error_note
	FROM runs
	`
	args := make([]interface{}, 0, 1)
	if label != "" {
		query += " WHERE label = ?"
		args = append(args, label)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var summary RunSummary
		var startedAt string
		var jsonlPath, csvPath, errorNote sql.NullString

		if err := rows.Scan(
			&summary.ID,
			&summary.Query,
			&summary.Label,
			&startedAt,
			&summary.Pages,
			&summary.Hosts,
			&summary.Rows,
			&jsonlPath,
			&csvPath,
			&errorNote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		summary.StartedAt = parseTimestamp(startedAt)
		summary.JSONLPath = jsonlPath.String
		summary.CSVPath = csvPath.String
		summary.ErrorNote = errorNote.String
		results = append(results, summary)
	}

	return results, rows.Err()
}

// GetRun retrieves one run summary by its database ID.
// It returns nil without an error when the run does not exist.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*RunSummary, error) {
	query := `
	SELECT id, query, label, started_at, pages, hosts, rows, jsonl_path, csv_path, error_note
	FROM runs
	WHERE id = ?
	`

	var summary RunSummary
	var startedAt string
	var jsonlPath, csvPath, errorNote sql.NullString

	err := rdb.db.QueryRowContext(ctx, query, id).Scan(
		&summary.ID,
		&summary.Query,
		&summary.Label,
		&startedAt,
		&summary.Pages,
		&summary.Hosts,
		&summary.Rows,
		&jsonlPath,
		&csvPath,
		&errorNote,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	summary.StartedAt = parseTimestamp(startedAt)
	summary.JSONLPath = jsonlPath.String
	summary.CSVPath = csvPath.String
	summary.ErrorNote = errorNote.String
	return &summary, nil
}

// GetRunIPs returns the sorted IPs observed by the given run.
func (rdb *RunDB) GetRunIPs(ctx context.Context, runID int64) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx,
		`SELECT ip FROM run_hosts WHERE run_id = ? ORDER BY ip`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run hosts: %w", err)
	}
	defer rows.Close()

	var ips []string
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			return nil, fmt.Errorf("failed to scan run host: %w", err)
		}
		ips = append(ips, ip)
	}

	return ips, rows.Err()
}

// RunDiff is the result of comparing the host sets of two runs.
type RunDiff struct {
	// Added holds IPs present in the newer run but not the older one.
	Added []string `json:"added,omitempty"`

	// Removed holds IPs present in the older run but not the newer one.
	Removed []string `json:"removed,omitempty"`

	// Unchanged holds IPs present in both runs.
	Unchanged []string `json:"unchanged,omitempty"`
}

// CompareRuns diffs the host sets of two stored runs. The first ID is
// treated as the older run and the second as the newer one.
func (rdb *RunDB) CompareRuns(ctx context.Context, oldID, newID int64) (*RunDiff, error) {
	oldIPs, err := rdb.GetRunIPs(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newIPs, err := rdb.GetRunIPs(ctx, newID)
	if err != nil {
		return nil, err
	}

	oldSet := make(map[string]struct{}, len(oldIPs))
	for _, ip := range oldIPs {
		oldSet[ip] = struct{}{}
	}

	diff := &RunDiff{}
	for _, ip := range newIPs {
		if _, ok := oldSet[ip]; ok {
			diff.Unchanged = append(diff.Unchanged, ip)
			delete(oldSet, ip)
		} else {
			diff.Added = append(diff.Added, ip)
		}
	}
	for _, ip := range oldIPs {
		if _, ok := oldSet[ip]; ok {
			diff.Removed = append(diff.Removed, ip)
		}
	}

	return diff, nil
}

// String renders the diff counts in a compact single line.
func (d *RunDiff) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "+%d -%d =%d", len(d.Added), len(d.Removed), len(d.Unchanged))
	return b.String()
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
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
