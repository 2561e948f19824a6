package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Database keeps an imported wants list and the scan history in SQLite.
type Database struct {
	db *sql.DB

	recordScanStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.recordScanStmt != nil {
		d.recordScanStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS wants (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            barcode TEXT NOT NULL,
            artist TEXT NOT NULL,
            album TEXT NOT NULL,
            wants TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS scans (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            raw_input TEXT NOT NULL,
            barcode TEXT NOT NULL DEFAULT '',
            outcome TEXT NOT NULL,
            artist TEXT NOT NULL DEFAULT '',
            album TEXT NOT NULL DEFAULT '',
            wants TEXT NOT NULL DEFAULT '',
            scanned_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_scans_run ON scans(run_id);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

func (d *Database) prepareStatements() error {
	var err error
	d.recordScanStmt, err = d.db.Prepare(`INSERT INTO scans(run_id,raw_input,barcode,outcome,artist,album,wants,scanned_at)
        VALUES(?,?,?,?,?,?,?,?)`)
	return err
}

// ---------------------------------------------------------------------------
// Wants catalog
// ---------------------------------------------------------------------------

// ReplaceWants swaps the stored wants list for wants in one transaction.
func (d *Database) ReplaceWants(wants []Want) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM wants`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO wants(barcode,artist,album,wants) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, w := range wants {
		if _, err := stmt.Exec(w.Barcode, w.Artist, w.Album, w.Wants); err != nil {
			return fmt.Errorf("insert want %s: %w", w.Barcode, err)
		}
	}
	return tx.Commit()
}

// CountWants returns the size of the stored wants list.
func (d *Database) CountWants() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM wants`).Scan(&n)
	return n, err
}

// Find matches digits against the stored list the same way WantList does:
// the first row, in import order, whose barcode contains the offline key.
func (d *Database) Find(ctx context.Context, digits string) (LookupResult, error) {
	var w Want
	err := d.db.QueryRowContext(ctx, `SELECT barcode,artist,album,wants FROM wants
        WHERE instr(barcode, ?) > 0 ORDER BY id LIMIT 1`, OfflineKey(digits)).
		Scan(&w.Barcode, &w.Artist, &w.Album, &w.Wants)
	if err == sql.ErrNoRows {
		return LookupResult{Barcode: digits}, nil
	}
	if err != nil {
		return LookupResult{}, err
	}
	return LookupResult{Barcode: digits, Want: &w}, nil
}

// ---------------------------------------------------------------------------
// Scan history
// ---------------------------------------------------------------------------

// RecordScan appends one submitted barcode to the history.
func (d *Database) RecordScan(runID string, o Outcome, at time.Time) (int64, error) {
	var artist, album, wants string
	if o.Want != nil {
		artist, album, wants = o.Want.Artist, o.Want.Album, o.Want.Wants
	}
	res, err := d.recordScanStmt.Exec(runID, o.Raw, o.Barcode, string(o.Kind), artist, album, wants, at.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentScans returns up to limit scans, newest first.
func (d *Database) RecentScans(limit int) ([]*ScanRecord, error) {
	rows, err := d.db.Query(`SELECT id,run_id,raw_input,barcode,outcome,artist,album,wants,scanned_at
        FROM scans ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []*ScanRecord
	for rows.Next() {
		var s ScanRecord
		var outcome string
		if err := rows.Scan(&s.ID, &s.RunID, &s.Raw, &s.Barcode, &outcome, &s.Artist, &s.Album, &s.Wants, &s.ScannedAt); err != nil {
			return nil, err
		}
		s.Outcome = OutcomeKind(outcome)
		scans = append(scans, &s)
	}
	return scans, rows.Err()
}
