package scanstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kolscan/internal/model"
)

// DB wraps the SQLite database holding scan history.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS channel_scans (
	  id TEXT PRIMARY KEY,
	  channel_id INTEGER NOT NULL,
	  username TEXT,
	  title TEXT,
	  scanned_at INTEGER NOT NULL,
	  report TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scans_username ON channel_scans(username, scanned_at);
	`)
	return err
}

// StoredScan is one persisted scan record.
type StoredScan struct {
	ID        string
	ScannedAt time.Time
	Report    model.ChannelReport
}

// Save persists one report and returns its scan id.
func (d *DB) Save(ctx context.Context, report model.ChannelReport) (string, error) {
	id := uuid.NewString()
	b, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO channel_scans(id, channel_id, username, title, scanned_at, report) VALUES(?,?,?,?,?,?)`,
		id, report.ChannelID, report.Username, report.Title, report.ScannedAt.Unix(), string(b))
	if err != nil {
		return "", err
	}
	return id, nil
}

// History returns past scans for a channel username, newest first, capped at
// limit (default 100).
func (d *DB) History(ctx context.Context, username string, limit int) ([]StoredScan, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, scanned_at, report FROM channel_scans WHERE username=? ORDER BY scanned_at DESC LIMIT ?`,
		username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredScan
	for rows.Next() {
		var s StoredScan
		var ts int64
		var raw string
		if err := rows.Scan(&s.ID, &ts, &raw); err != nil {
			return nil, err
		}
		s.ScannedAt = time.Unix(ts, 0).UTC()
		if err := json.Unmarshal([]byte(raw), &s.Report); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
