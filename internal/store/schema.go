package store

const schema = `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS launches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at DATETIME NOT NULL,
  workspace TEXT NOT NULL,
  script TEXT NOT NULL,
  command_text TEXT NOT NULL,
  script_body TEXT NOT NULL DEFAULT '',
  terminal TEXT NOT NULL,
  session_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS launches_lookup
  ON launches(workspace, created_at);
`
