package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/sanitize"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
)

// wallLayout sorts lexicographically in time order.
const wallLayout = "2006-01-02T15:04:05.000000000"

// fresh reports whether the stored fingerprint still matches the file.
// The hash is only computed when mtime and size agree.
func (m *Manager) fresh(key string) (bool, error) {
	var stored scan.Fingerprint
	var hash int64
	err := m.db.QueryRow(
		"SELECT mtime, size, hash FROM files WHERE file_path = ?", key,
	).Scan(&stored.Mtime, &stored.Size, &hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	stored.Hash = uint64(hash)

	info, err := os.Stat(key)
	if err != nil {
		return false, err
	}
	if info.ModTime().UnixNano() != stored.Mtime || info.Size() != stored.Size {
		return false, nil
	}
	fp, err := scan.FingerprintFile(key)
	if err != nil {
		return false, err
	}
	return fp == stored, nil
}

// LoadCachedEntries returns the cached entries of path if they are still
// valid for the file's current contents.
func (m *Manager) LoadCachedEntries(path string) ([]model.Entry, bool) {
	return m.load(path, nil, nil)
}

// LoadCachedEntriesFiltered is LoadCachedEntries restricted to entries
// whose wall-clock timestamp lies in [from, to]. Summaries are always
// returned; entries without a parseable timestamp never are.
func (m *Manager) LoadCachedEntriesFiltered(path string, from, to *time.Time) ([]model.Entry, bool) {
	return m.load(path, from, to)
}

func (m *Manager) load(path string, from, to *time.Time) ([]model.Entry, bool) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	ok, err := m.fresh(key)
	if err != nil {
		m.logger.Debug("cache lookup failed", "path", key, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	query := "SELECT data FROM entries WHERE file_path = ?"
	args := []any{key}
	if from != nil || to != nil {
		query += " AND (type = 'summary' OR (wall IS NOT NULL AND wall >= ? AND wall <= ?))"
		lo, hi := "", "9999"
		if from != nil {
			lo = from.Format(wallLayout)
		}
		if to != nil {
			hi = to.Format(wallLayout)
		}
		args = append(args, lo, hi)
	}
	query += " ORDER BY seq"

	rows, err := m.db.Query(query, args...)
	if err != nil {
		m.logger.Debug("cache read failed", "path", key, "err", err)
		return nil, false
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, false
		}
		e, err := m.parser.Entry([]byte(data))
		if err != nil {
			m.logger.Debug("cached entry unreadable", "path", key, "err", err)
			return nil, false
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, false
	}
	return entries, true
}

// SaveCachedEntries replaces the cached entries of path. fp must describe
// the bytes the entries were parsed from, not the file as it is now, or an
// append racing the save would be hidden behind a fresh fingerprint. Text
// is sanitized before it is written.
func (m *Manager) SaveCachedEntries(path string, fp scan.Fingerprint, entries []model.Entry) error {
	key, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteFile(tx, key); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO entries (file_path, seq, type, uuid, session_id, ts, wall, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var earliest, latest time.Time
	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
		var uuid, session, ts string
		if b := model.BaseOf(e); b != nil {
			uuid, session, ts = b.UUID, b.SessionID, b.Timestamp
		} else {
			uuid = model.UUID(e)
		}
		var wall sql.NullString
		if t, ok := e.Time(); ok {
			wall = sql.NullString{String: model.WallClock(t).Format(wallLayout), Valid: true}
			if earliest.IsZero() || t.Before(earliest) {
				earliest = t
			}
			if t.After(latest) {
				latest = t
			}
		}
		_, err = stmt.Exec(key, i, string(e.EntryType()),
			sanitize.String(uuid), sanitize.String(session), sanitize.String(ts),
			wall, string(sanitize.Bytes(data)))
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		`INSERT INTO files (file_path, mtime, size, hash, entry_count, earliest, latest, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key, fp.Mtime, fp.Size, int64(fp.Hash), len(entries),
		formatTime(earliest), formatTime(latest), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deleteFile(tx *sql.Tx, key string) error {
	if _, err := tx.Exec("DELETE FROM entries WHERE file_path = ?", key); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM files WHERE file_path = ?", key)
	return err
}
