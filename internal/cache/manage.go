package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

type Stats struct {
	Files   int
	Entries int
	Stale   int
	Missing int
}

func (s Stats) String() string {
	return fmt.Sprintf("files=%d entries=%d stale=%d missing=%d",
		s.Files, s.Entries, s.Stale, s.Missing)
}

type FileRow struct {
	Path       string
	EntryCount int
	Earliest   string
	Latest     string
	CachedAt   string
}

// Files lists every cached file, most recently cached first.
func (m *Manager) Files() ([]FileRow, error) {
	rows, err := m.db.Query(
		"SELECT file_path, entry_count, earliest, latest, cached_at FROM files ORDER BY cached_at DESC, file_path",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var r FileRow
		if err := rows.Scan(&r.Path, &r.EntryCount, &r.Earliest, &r.Latest, &r.CachedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats counts cached files and entries and checks each file against disk.
func (m *Manager) Stats() (Stats, error) {
	var s Stats
	if err := m.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&s.Entries); err != nil {
		return s, err
	}
	files, err := m.Files()
	if err != nil {
		return s, err
	}
	s.Files = len(files)
	for _, f := range files {
		ok, err := m.fresh(f.Path)
		switch {
		case os.IsNotExist(err):
			s.Missing++
		case err != nil || !ok:
			s.Stale++
		}
	}
	return s, nil
}

// Valid reports whether path has a cache entry matching its contents.
func (m *Manager) Valid(path string) (bool, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	return m.fresh(key)
}

// Remove drops the cache entry of one file.
func (m *Manager) Remove(path string) error {
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
	return tx.Commit()
}

// Clear drops every cached file. Version metadata is kept.
func (m *Manager) Clear() error {
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
	return tx.Commit()
}

// Prune removes cache entries for files that no longer exist.
func (m *Manager) Prune() (int, error) {
	files, err := m.Files()
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, f := range files {
		if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
			continue
		}
		if err := m.Remove(f.Path); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
