package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

type DB struct{ *sql.DB }

// Launch is one script dispatched into a workspace terminal.
type Launch struct {
	At          time.Time
	Workspace   string
	Script      string
	CommandText string
	// ScriptBody is the manifest command, with secrets redacted.
	ScriptBody string
	Terminal   string
	SessionID  string
}

// DataDir is the default directory for the database and log file.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "npm-scripts-runner")
}

func DefaultPath() string { return filepath.Join(DataDir(), "state.sqlite") }

// Open opens (creating if needed) the state database at path. An empty path
// means DefaultPath.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := checkOwnership(path); err != nil {
		return nil, err
	}
	// Several processes may share the file; wait on locks instead of failing.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	var _mode string
	if err := db.QueryRow(`PRAGMA journal_mode=WAL;`).Scan(&_mode); err != nil {
		_ = err // best-effort
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func WithDB(path string, fn func(*DB) error) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// Get returns the value stored under key. ok is false when the key is absent.
func (db *DB) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (db *DB) Set(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Keys lists every key starting with prefix, in key order.
func (db *DB) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
SELECT key FROM kv
WHERE substr(key, 1, length(?)) = ?
ORDER BY key ASC`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) InsertLaunch(ctx context.Context, l Launch) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO launches
(created_at, workspace, script, command_text, script_body, terminal, session_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.At, l.Workspace, l.Script, l.CommandText, l.ScriptBody, l.Terminal, l.SessionID,
	)
	return err
}

// ListLaunches returns the most recent launches, newest first. An empty
// workspace lists launches for every workspace.
func (db *DB) ListLaunches(ctx context.Context, workspace string, limit int) ([]Launch, error) {
	var rows *sql.Rows
	var err error

	if workspace == "" {
		rows, err = db.QueryContext(ctx, `
SELECT created_at, workspace, script, command_text, script_body, terminal, session_id
FROM launches
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, `
SELECT created_at, workspace, script, command_text, script_body, terminal, session_id
FROM launches
WHERE workspace = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`, workspace, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Launch
	for rows.Next() {
		var l Launch
		var atRaw sql.NullString
		if err := rows.Scan(&atRaw, &l.Workspace, &l.Script, &l.CommandText, &l.ScriptBody, &l.Terminal, &l.SessionID); err != nil {
			continue
		}
		l.At = parseDBTime(atRaw.String)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseDBTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if i := strings.Index(s, " m="); i != -1 {
		s = strings.TrimSpace(s[:i])
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05.999999999 -0700",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
