// Package cache persists parsed entry lists in SQLite, keyed by absolute
// file path and a content fingerprint.
package cache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/ai-session-log/internal/parse"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
    file_path   TEXT PRIMARY KEY,
    mtime       INTEGER NOT NULL,
    size        INTEGER NOT NULL,
    hash        INTEGER NOT NULL,
    entry_count INTEGER NOT NULL DEFAULT 0,
    earliest    TEXT NOT NULL DEFAULT '',
    latest      TEXT NOT NULL DEFAULT '',
    cached_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    file_path  TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    type       TEXT NOT NULL,
    uuid       TEXT NOT NULL DEFAULT '',
    session_id TEXT NOT NULL DEFAULT '',
    ts         TEXT NOT NULL DEFAULT '',
    wall       TEXT,
    data       TEXT NOT NULL,
    PRIMARY KEY (file_path, seq)
);

CREATE INDEX IF NOT EXISTS entries_wall ON entries(file_path, wall);
`

// schemaVersion should be bumped whenever the stored entry encoding
// changes to force a full re-parse.
const schemaVersion = "1"

type Manager struct {
	db      *sql.DB
	parser  *parse.Parser
	logger  *slog.Logger
	version string
}

type Option func(*Manager)

// WithLibraryVersion invalidates entries written by any other version.
func WithLibraryVersion(v string) Option {
	return func(m *Manager) { m.version = v }
}

// WithParser sets the parser used to decode stored entries.
func WithParser(p *parse.Parser) Option {
	return func(m *Manager) { m.parser = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func Open(dbPath string, opts ...Option) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// one connection serializes writers from parallel directory loads
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	m := &Manager{db: db, version: "dev"}
	for _, o := range opts {
		o(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.parser == nil {
		m.parser = parse.New(parse.WithSchema(nil))
	}
	if err := m.migrateVersions(); err != nil {
		db.Close()
		return nil, fmt.Errorf("check cache version: %w", err)
	}
	return m, nil
}

// migrateVersions drops every cached file when the schema or library
// version differs from the one that wrote the cache.
func (m *Manager) migrateVersions() error {
	want := map[string]string{
		"schema_version":  schemaVersion,
		"library_version": m.version,
	}
	stale := false
	for key, v := range want {
		var got string
		err := m.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&got)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if got != v {
			stale = true
		}
	}
	if !stale {
		return nil
	}

	m.logger.Info("cache version changed, clearing", "schema", schemaVersion, "library", m.version)
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM entries", "DELETE FROM files"} {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	for key, v := range want {
		if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Versions returns the schema and library versions stored in the cache.
func (m *Manager) Versions() (schemaVer, libraryVer string, err error) {
	rows, err := m.db.Query("SELECT key, value FROM meta")
	if err != nil {
		return "", "", err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return "", "", err
		}
		switch k {
		case "schema_version":
			schemaVer = v
		case "library_version":
			libraryVer = v
		}
	}
	return schemaVer, libraryVer, rows.Err()
}
