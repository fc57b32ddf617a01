package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// FileName is the database file created in the data directory.
const FileName = "easysvg.db"

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// AuditDB stores outcomes in SQLite.
type AuditDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, which lets the history command
	// read while the server writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in dbDir.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return adb, nil
}

// ErrNotFound is returned by Open when the database does not exist and
// CreateIfNotExists is false.
var ErrNotFound = errors.New("audit database not found")

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

func (adb *AuditDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		upload_id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		principal TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		severity INTEGER NOT NULL DEFAULT 0,
		policy TEXT NOT NULL DEFAULT '',
		policy_version TEXT NOT NULL DEFAULT '',
		input_bytes INTEGER NOT NULL DEFAULT 0,
		output_bytes INTEGER NOT NULL DEFAULT 0,
		input_digest TEXT NOT NULL DEFAULT '',
		output_digest TEXT NOT NULL DEFAULT '',
		elements_kept INTEGER NOT NULL DEFAULT 0,
		elements_removed INTEGER NOT NULL DEFAULT 0,
		attributes_removed INTEGER NOT NULL DEFAULT 0,
		nodes_stripped INTEGER NOT NULL DEFAULT 0,
		minified INTEGER NOT NULL DEFAULT 0,
		destination TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0,
		processed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_processed ON outcomes(processed_at);
	CREATE INDEX IF NOT EXISTS idx_outcomes_reason ON outcomes(reason);
	CREATE INDEX IF NOT EXISTS idx_outcomes_principal ON outcomes(principal);
	CREATE INDEX IF NOT EXISTS idx_outcomes_input_digest ON outcomes(input_digest);
	`
	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// Record is a stored outcome.
type Record struct {
	ID int64
	*model.Outcome
}

// SaveOutcome inserts o and returns its row ID.
func (adb *AuditDB) SaveOutcome(ctx context.Context, o *model.Outcome) (int64, error) {
	processed := o.ProcessedAt
	if processed.IsZero() {
		processed = time.Now()
	}
	query := `
	INSERT INTO outcomes (
		upload_id, source, principal, status, reason, detail, severity,
		policy, policy_version, input_bytes, output_bytes, input_digest, output_digest,
		elements_kept, elements_removed, attributes_removed, nodes_stripped,
		minified, destination, duration_ns, processed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := adb.db.ExecContext(ctx, query,
		o.ID, o.Source, o.Principal, string(o.Status), string(o.Reason), o.Detail, int(o.Severity),
		o.Policy, o.PolicyVersion, o.InputBytes, o.OutputBytes, o.InputDigest, o.OutputDigest,
		o.Stats.ElementsKept, o.Stats.ElementsRemoved, o.Stats.AttributesRemoved, o.Stats.NodesStripped,
		o.Minified, o.Destination, int64(o.Duration), processed.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save outcome: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read outcome id: %w", err)
	}
	return id, nil
}

// Filter narrows ListOutcomes. Zero fields match everything.
type Filter struct {
	Status      model.Status
	Reason      sanitizer.Reason
	Principal   string
	InputDigest string
	Since       time.Time
	// Limit caps the number of rows; zero means 100.
	Limit int
}

const outcomeColumns = `id, upload_id, source, principal, status, reason, detail, severity,
	policy, policy_version, input_bytes, output_bytes, input_digest, output_digest,
	elements_kept, elements_removed, attributes_removed, nodes_stripped,
	minified, destination, duration_ns, processed_at`

// ListOutcomes returns matching outcomes, newest first.
func (adb *AuditDB) ListOutcomes(ctx context.Context, f Filter) ([]Record, error) {
	where, args := f.where()
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query := "SELECT " + outcomeColumns + " FROM outcomes" + where +
		" ORDER BY processed_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetOutcome returns the outcome with the given row ID, or nil.
func (adb *AuditDB) GetOutcome(ctx context.Context, id int64) (*Record, error) {
	row := adb.db.QueryRowContext(ctx, "SELECT "+outcomeColumns+" FROM outcomes WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountByReason counts rejections per reason since a point in time.
func (adb *AuditDB) CountByReason(ctx context.Context, since time.Time) (map[sanitizer.Reason]int, error) {
	where, args := Filter{Status: model.StatusRejected, Since: since}.where()
	rows, err := adb.db.QueryContext(ctx, "SELECT reason, COUNT(*) FROM outcomes"+where+" GROUP BY reason", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count reasons: %w", err)
	}
	defer rows.Close()

	counts := make(map[sanitizer.Reason]int)
	for rows.Next() {
		var (
			reason string
			n      int
		)
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("failed to scan reason count: %w", err)
		}
		counts[sanitizer.Reason(reason)] = n
	}
	return counts, rows.Err()
}

// CountByStatus counts outcomes per status since a point in time.
func (adb *AuditDB) CountByStatus(ctx context.Context, since time.Time) (map[model.Status]int, error) {
	where, args := Filter{Since: since}.where()
	rows, err := adb.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM outcomes"+where+" GROUP BY status", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[model.Status(status)] = n
	}
	return counts, rows.Err()
}

// Prune deletes outcomes processed before t and returns how many were
// removed.
func (adb *AuditDB) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := adb.db.ExecContext(ctx, "DELETE FROM outcomes WHERE processed_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune outcomes: %w", err)
	}
	return res.RowsAffected()
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.Reason != "" {
		add("reason = ?", string(f.Reason))
	}
	if f.Principal != "" {
		add("principal = ?", f.Principal)
	}
	if f.InputDigest != "" {
		add("input_digest = ?", f.InputDigest)
	}
	if !f.Since.IsZero() {
		add("processed_at >= ?", f.Since.UTC().Format(timeLayout))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		r         = Record{Outcome: &model.Outcome{}}
		o         = r.Outcome
		status    string
		reason    string
		severity  int
		duration  int64
		processed string
	)
	err := s.Scan(&r.ID, &o.ID, &o.Source, &o.Principal, &status, &reason, &o.Detail, &severity,
		&o.Policy, &o.PolicyVersion, &o.InputBytes, &o.OutputBytes, &o.InputDigest, &o.OutputDigest,
		&o.Stats.ElementsKept, &o.Stats.ElementsRemoved, &o.Stats.AttributesRemoved, &o.Stats.NodesStripped,
		&o.Minified, &o.Destination, &duration, &processed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("failed to scan outcome: %w", err)
	}
	o.Status = model.Status(status)
	o.Reason = sanitizer.Reason(reason)
	o.Severity = model.Severity(severity)
	o.SeverityText = o.Severity.String()
	o.Duration = time.Duration(duration)
	o.ProcessedAt = parseTimestamp(processed)
	return r, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// Rows written by this package use timeLayout.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp parses s with each known format, returning zero time if
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
