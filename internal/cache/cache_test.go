package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
	"github.com/Zuo-Peng/ai-session-log/internal/transcript"
)

var _ transcript.Cache = (*Manager)(nil)

const sample = `{"type":"summary","summary":"Fix login","leafUuid":"u2"}
{"type":"user","uuid":"u1","parentUuid":null,"timestamp":"2025-01-01T10:00:00Z","isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s1","version":"1","message":{"role":"user","content":"hello"}}
{"type":"assistant","uuid":"u2","parentUuid":"u1","timestamp":"2025-01-03T10:00:00Z","isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s1","version":"1","message":{"id":"m","type":"message","role":"assistant","model":"x","content":[{"type":"thinking","thinking":"hm","signature":"sig"},{"type":"text","text":"hi"}],"usage":{"input_tokens":3,"output_tokens":4}}}
{"type":"system","uuid":"u3","parentUuid":"u2","timestamp":"yesterday-ish","isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s1","version":"1","content":"note"}
`

func openTest(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "cache.db"), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func load(t *testing.T, path string) []model.Entry {
	t.Helper()
	entries, err := transcript.New(transcript.Options{}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return entries
}

func fingerprint(t *testing.T, path string) scan.Fingerprint {
	t.Helper()
	fp, err := scan.FingerprintFile(path)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	return fp
}

func TestRoundTrip(t *testing.T) {
	m := openTest(t)
	path := writeSample(t, sample)
	entries := load(t, path)

	if _, ok := m.LoadCachedEntries(path); ok {
		t.Fatal("empty cache reported a hit")
	}
	if err := m.SaveCachedEntries(path, fingerprint(t, path), entries); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok := m.LoadCachedEntries(path)
	if !ok {
		t.Fatal("want hit after save")
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		a, _ := json.Marshal(entries[i])
		b, _ := json.Marshal(got[i])
		if string(a) != string(b) {
			t.Errorf("entry %d differs:\n%s\n%s", i, a, b)
		}
	}
}

func TestInvalidationOnChange(t *testing.T) {
	m := openTest(t)
	path := writeSample(t, sample)
	if err := m.SaveCachedEntries(path, fingerprint(t, path), load(t, path)); err != nil {
		t.Fatal(err)
	}

	// same size, same mtime, different bytes: only the hash can tell
	info, _ := os.Stat(path)
	changed := strings.Replace(sample, "hello", "HELLO", 1)
	if err := os.WriteFile(path, []byte(changed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.LoadCachedEntries(path); ok {
		t.Error("changed content should invalidate the cache")
	}

	if err := os.WriteFile(path, []byte(sample+sample), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.LoadCachedEntries(path); ok {
		t.Error("changed size should invalidate the cache")
	}
}

func TestFilteredRetrieval(t *testing.T) {
	m := openTest(t)
	path := writeSample(t, sample)
	if err := m.SaveCachedEntries(path, fingerprint(t, path), load(t, path)); err != nil {
		t.Fatal(err)
	}

	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	got, ok := m.LoadCachedEntriesFiltered(path, &from, nil)
	if !ok {
		t.Fatal("want hit")
	}
	var kinds []string
	for _, e := range got {
		kinds = append(kinds, string(e.EntryType()))
	}
	if strings.Join(kinds, ",") != "summary,assistant" {
		t.Errorf("got %v, want summary and assistant", kinds)
	}

	to := time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC)
	got, _ = m.LoadCachedEntriesFiltered(path, nil, &to)
	if len(got) != 2 || got[1].EntryType() != model.EntryUser {
		t.Errorf("to-only filter: %v", got)
	}
}

func TestVersionMismatchClears(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	path := writeSample(t, sample)

	m, err := Open(dbPath, WithLibraryVersion("1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SaveCachedEntries(path, fingerprint(t, path), load(t, path)); err != nil {
		t.Fatal(err)
	}
	m.Close()

	same, err := Open(dbPath, WithLibraryVersion("1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := same.LoadCachedEntries(path); !ok {
		t.Error("same version should keep the cache")
	}
	same.Close()

	next, err := Open(dbPath, WithLibraryVersion("1.1.0"))
	if err != nil {
		t.Fatal(err)
	}
	defer next.Close()
	if _, ok := next.LoadCachedEntries(path); ok {
		t.Error("new version should clear the cache")
	}
	_, lib, err := next.Versions()
	if err != nil || lib != "1.1.0" {
		t.Errorf("Versions: %q, %v", lib, err)
	}
}

func TestSanitizesOnWrite(t *testing.T) {
	m := openTest(t)
	path := writeSample(t, sample)
	text := "bad \xed\xa0\xbd bytes"
	entries := []model.Entry{&model.SystemEntry{
		Base:    model.Base{UUID: "x", Timestamp: "2025-01-01T00:00:00Z"},
		Content: text,
	}}
	if err := m.SaveCachedEntries(path, fingerprint(t, path), entries); err != nil {
		t.Fatal(err)
	}
	got, ok := m.LoadCachedEntries(path)
	if !ok || len(got) != 1 {
		t.Fatalf("got %v, %v", got, ok)
	}
	content := got[0].(*model.SystemEntry).Content
	if !utf8.ValidString(content) || !strings.HasPrefix(content, "bad ") {
		t.Errorf("content = %q", content)
	}
}

func TestStatsAndPrune(t *testing.T) {
	m := openTest(t)
	keep := writeSample(t, sample)
	gone := writeSample(t, sample)
	for _, p := range []string{keep, gone} {
		if err := m.SaveCachedEntries(p, fingerprint(t, p), load(t, p)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	s, err := m.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if s.Files != 2 || s.Missing != 1 || s.Entries != 8 {
		t.Errorf("stats = %s", s)
	}

	n, err := m.Prune()
	if err != nil || n != 1 {
		t.Errorf("Prune = %d, %v", n, err)
	}
	files, _ := m.Files()
	if len(files) != 1 || files[0].EntryCount != 4 {
		t.Errorf("files after prune: %+v", files)
	}

	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.Valid(keep); ok {
		t.Error("cleared cache still valid")
	}
}

// appendOnSave grows the transcript between the loader's read and the cache
// write, the way a live session does.
type appendOnSave struct {
	*Manager
	line string
	done bool
}

func (a *appendOnSave) SaveCachedEntries(path string, fp scan.Fingerprint, entries []model.Entry) error {
	if !a.done {
		a.done = true
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(a.line); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return a.Manager.SaveCachedEntries(path, fp, entries)
}

func TestAppendDuringLoadInvalidates(t *testing.T) {
	m := openTest(t)
	first := `{"type":"user","uuid":"u1","parentUuid":null,"timestamp":"2025-01-01T10:00:00Z","isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s1","version":"1","message":{"role":"user","content":"one"}}` + "\n"
	second := strings.Replace(strings.Replace(first, `"u1"`, `"u2"`, 1), `"one"`, `"two"`, 1)
	path := writeSample(t, first)

	l := transcript.New(transcript.Options{Cache: &appendOnSave{Manager: m, line: second}})
	entries, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("first load: got %d entries, want 1", len(entries))
	}

	if _, ok := m.LoadCachedEntries(path); ok {
		t.Fatal("cache hit for a file that grew after it was read")
	}
	entries, err = l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("reload: got %d entries, want 2", len(entries))
	}
	if got, ok := m.LoadCachedEntries(path); !ok || len(got) != 2 {
		t.Errorf("cached after reload: ok=%v len=%d, want 2", ok, len(got))
	}
}
