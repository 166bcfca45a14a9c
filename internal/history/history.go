// Package history records update runs to a local SQLite database so an
// operator can answer "when did this device last get flashed, and did it
// work" without digging through terminal scrollback.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/updtrr/updtrr/internal/fleet"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   TIMESTAMP NOT NULL,
	finished_at  TIMESTAMP NOT NULL,
	bundle_version TEXT NOT NULL,
	status       TEXT NOT NULL,
	interrupted  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_devices (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	address  TEXT NOT NULL,
	label    TEXT NOT NULL DEFAULT '',
	outcome  TEXT NOT NULL,
	detail   TEXT NOT NULL DEFAULT '',
	version_before TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_run_devices_run ON run_devices(run_id);
CREATE INDEX IF NOT EXISTS idx_run_devices_address ON run_devices(address);
`

// Store persists run history. Safe for use from one process at a time;
// SQLite's own locking covers concurrent updater invocations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path, creating parent
// directories as needed. ":memory:" works for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is a recorded fleet run.
type Run struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	BundleVersion string
	Status        string
	Interrupted   bool
	Devices       []RunDevice
}

// RunDevice is one device's outcome within a recorded run.
type RunDevice struct {
	Address       string
	Label         string
	Outcome       string
	Detail        string
	VersionBefore string
}

// RecordRun stores a finished run and all its per-device outcomes in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, startedAt time.Time, bundleVersion string, report *fleet.Report) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, finished_at, bundle_version, status, interrupted)
		VALUES (?, ?, ?, ?, ?)`,
		startedAt, time.Now(), bundleVersion, report.Status().String(), report.Interrupted)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, r := range report.Results {
		versionBefore := ""
		if r.Outcome.Info != nil {
			versionBefore = r.Outcome.Info.Version
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_devices (run_id, address, label, outcome, detail, version_before)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, r.Target.Address, r.Target.Label,
			r.Outcome.Kind.String(), r.Outcome.Describe(), versionBefore)
		if err != nil {
			return 0, fmt.Errorf("record device outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// RecentRuns returns the latest runs with their device outcomes, newest
// first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, bundle_version, status, interrupted
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.BundleVersion, &r.Status, &r.Interrupted); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		devices, err := s.runDevices(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Devices = devices
	}

	return runs, nil
}

// DeviceHistory returns every recorded outcome for one device address,
// newest first.
func (s *Store) DeviceHistory(ctx context.Context, address string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.finished_at, r.bundle_version, r.status, r.interrupted,
			d.address, d.label, d.outcome, d.detail, d.version_before
		FROM runs r JOIN run_devices d ON d.run_id = r.id
		WHERE d.address = ?
		ORDER BY r.started_at DESC LIMIT ?`, address, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var d RunDevice
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.BundleVersion, &r.Status, &r.Interrupted,
			&d.Address, &d.Label, &d.Outcome, &d.Detail, &d.VersionBefore); err != nil {
			return nil, err
		}
		r.Devices = []RunDevice{d}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// runDevices loads the device outcomes for one run, in insertion order.
func (s *Store) runDevices(ctx context.Context, runID int64) ([]RunDevice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, label, outcome, detail, version_before
		FROM run_devices WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []RunDevice
	for rows.Next() {
		var d RunDevice
		if err := rows.Scan(&d.Address, &d.Label, &d.Outcome, &d.Detail, &d.VersionBefore); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}
