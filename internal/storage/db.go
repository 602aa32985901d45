package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"famdir/internal"
)

const (
	StatusFetched = "fetched"
	StatusBuilt   = "built"
	StatusFailed  = "failed"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  sourceHash TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  warningsJson TEXT NOT NULL,
  warningCount INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_sourceHash ON runs(sourceHash);

CREATE TABLE IF NOT EXISTS hubs (
  name TEXT PRIMARY KEY,
  firstRunId TEXT NOT NULL,
  lastRunId TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(firstRunId) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS roster_exports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  filename TEXT NOT NULL,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  path TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId, hash)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// RecordRun stores one build and returns the hubs no earlier run produced, which have to be
// created on the membership platform before the import.
func (d *DB) RecordRun(run internal.RunRow, warnings []internal.Warning, hubs []string) ([]string, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	countsJSON, _ := json.Marshal(run.Counts)
	if warnings == nil {
		warnings = []internal.Warning{}
	}
	warningsJSON, _ := json.Marshal(warnings)
	if _, err := tx.Exec(`
INSERT INTO runs (id, source, sourceHash, countsJson, warningsJson, warningCount)
VALUES (?, ?, ?, ?, ?, ?)
`, run.ID, run.Source, run.SourceHash, string(countsJSON), string(warningsJSON), len(warnings)); err != nil {
		return nil, err
	}

	var fresh []string
	for _, hub := range hubs {
		var existing string
		err := tx.QueryRow(`SELECT name FROM hubs WHERE name = ?`, hub).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.Exec(`INSERT INTO hubs (name, firstRunId, lastRunId) VALUES (?, ?, ?)`, hub, run.ID, run.ID); err != nil {
				return nil, err
			}
			fresh = append(fresh, hub)
		case err != nil:
			return nil, err
		default:
			if _, err := tx.Exec(`UPDATE hubs SET lastRunId = ? WHERE name = ?`, run.ID, hub); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, source, sourceHash, countsJson, warningCount, createdAt
FROM runs ORDER BY createdAt DESC, rowid DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var countsJSON string
		if err := rows.Scan(&row.ID, &row.Source, &row.SourceHash, &countsJSON, &row.WarningCount, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) RunWarnings(runID string) ([]internal.Warning, error) {
	var warningsJSON string
	err := d.conn.QueryRow(`SELECT warningsJson FROM runs WHERE id = ?`, runID).Scan(&warningsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []internal.Warning
	if err := json.Unmarshal([]byte(warningsJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) UpsertRosterExport(row internal.RosterExportRow) (internal.RosterExportRow, error) {
	status := row.Status
	if status == "" {
		status = StatusFetched
	}
	_, err := d.conn.Exec(`
INSERT INTO roster_exports (provider, messageId, subject, sender, receivedAt, filename, hash, status, path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId, hash) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  filename=excluded.filename,
  path=excluded.path,
  updatedAt=CURRENT_TIMESTAMP
`, row.Provider, row.MessageID, row.Subject, row.Sender, row.ReceivedAt, row.Filename, row.Hash, status, row.Path)
	if err != nil {
		return internal.RosterExportRow{}, err
	}

	var out internal.RosterExportRow
	err = d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, filename, hash, status, path
FROM roster_exports WHERE provider = ? AND messageId = ? AND hash = ?
`, row.Provider, row.MessageID, row.Hash).Scan(
		&out.ID, &out.Provider, &out.MessageID, &out.Subject, &out.Sender, &out.ReceivedAt, &out.Filename, &out.Hash, &out.Status, &out.Path,
	)
	if err != nil {
		return internal.RosterExportRow{}, err
	}
	return out, nil
}

func (d *DB) ListRosterExportsByStatus(status string, limit int) ([]internal.RosterExportRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, filename, hash, status, path
FROM roster_exports WHERE status = ? ORDER BY receivedAt ASC, id ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RosterExportRow
	for rows.Next() {
		var row internal.RosterExportRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Filename, &row.Hash, &row.Status, &row.Path); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateRosterExportStatus(id int, status string) error {
	_, err := d.conn.Exec(`UPDATE roster_exports SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
