package probe

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists probe records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite probe store.
// The path should be a file path (e.g., "./probe.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Create table and index
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS probe_records (
			uid TEXT NOT NULL PRIMARY KEY,
			sequence INTEGER NOT NULL,
			flag TEXT NOT NULL,
			kind TEXT NOT NULL,
			requested_ns INTEGER NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			overshoot_ns INTEGER NOT NULL,
			notified INTEGER NOT NULL,
			at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_probe_records_flag
		ON probe_records(flag)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append adds a record to the log.
func (s *SQLiteStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Listing orders by a monotonic sequence: the RFC3339Nano text in
	// the at column is not sortable (the fractional part is trimmed).
	_, err := s.db.Exec(`
		INSERT INTO probe_records (uid, sequence, flag, kind, requested_ns, elapsed_ns, overshoot_ns, notified, at)
		VALUES (
			?,
			COALESCE((SELECT MAX(sequence) FROM probe_records), 0) + 1,
			?, ?, ?, ?, ?, ?, ?
		)
	`, rec.UID, rec.Flag, string(rec.Kind),
		int64(rec.Requested), int64(rec.Elapsed), int64(rec.Overshoot),
		rec.Notified, rec.At.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("append probe record: %w", err)
	}
	return nil
}

// List returns records for a flag name, oldest first.
// An empty flag name returns all records.
func (s *SQLiteStore) List(flagName string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT uid, flag, kind, requested_ns, elapsed_ns, overshoot_ns, notified, at
		FROM probe_records
	`
	args := []any{}
	if flagName != "" {
		query += " WHERE flag = ?"
		args = append(args, flagName)
	}
	query += " ORDER BY sequence"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list probe records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var kind, at string
		var requested, elapsed, overshoot int64
		if err := rows.Scan(&rec.UID, &rec.Flag, &kind, &requested, &elapsed, &overshoot, &rec.Notified, &at); err != nil {
			return nil, fmt.Errorf("scan probe record: %w", err)
		}
		rec.Kind = Kind(kind)
		rec.Requested = time.Duration(requested)
		rec.Elapsed = time.Duration(elapsed)
		rec.Overshoot = time.Duration(overshoot)
		rec.At, _ = time.Parse(time.RFC3339Nano, at)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probe records: %w", err)
	}

	return records, nil
}

// Purge removes all records.
func (s *SQLiteStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec("DELETE FROM probe_records"); err != nil {
		return fmt.Errorf("purge probe records: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
