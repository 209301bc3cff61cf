package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
)

func assertEqual[T comparable](t *testing.T, field string, want, got T) {
	t.Helper()
	if got != want {
		t.Errorf("%s: want %v, got %v", field, want, got)
	}
}

func userLine(uuid, ts, text string) string {
	return fmt.Sprintf(`{"type":"user","uuid":%q,"timestamp":%q,"parentUuid":null,"isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s","version":"1","message":{"role":"user","content":%q}}`, uuid, ts, text)
}

func childLine(uuid, parent, ts string) string {
	return fmt.Sprintf(`{"type":"assistant","uuid":%q,"parentUuid":%q,"timestamp":%q,"isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s","version":"1","message":{"id":"m","type":"message","role":"assistant","model":"x","content":[{"type":"text","text":"ok"}]}}`, uuid, parent, ts)
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_ScenarioA(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.jsonl", userLine("u1", "2025-01-01T00:00:00Z", "hi"))

	entries, err := New(Options{}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	u, ok := entries[0].(*model.UserEntry)
	if !ok {
		t.Fatalf("got %T", entries[0])
	}
	assertEqual(t, "content", "hi", u.Message.Content.Text)
}

func TestLoad_Resilience(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mixed.jsonl",
		userLine("u1", "2025-01-01T00:00:00Z", "one"),
		`{"type":"user",`,
		``,
		`[1,2,3]`,
		`{"type":"progress","data":{}}`,
		userLine("u2", "2025-01-01T00:00:01Z", "two"),
		`{"type":"user","uuid":"u3"}`,
		`   `,
		`{"type":"summary","summary":"done","leafUuid":"u2"}`,
		`"string"`,
	)
	sink := &Collector{}
	entries, err := New(Options{Sink: sink}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqual(t, "entries", 3, len(entries))
	assertEqual(t, "decode", 1, sink.Count(ReasonDecode))
	assertEqual(t, "not object", 2, sink.Count(ReasonNotObject))
	assertEqual(t, "unknown type", 1, sink.Count(ReasonUnknownType))
	assertEqual(t, "validation", 1, sink.Count(ReasonValidation))

	var lines []int
	for _, d := range sink.Diagnostics() {
		if d.Path != path {
			t.Errorf("diagnostic path = %q", d.Path)
		}
		lines = append(lines, d.Line)
	}
	assertEqual(t, "lines", "[2 4 5 7 10]", fmt.Sprint(lines))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New(Options{}).Load(filepath.Join(t.TempDir(), "nope.jsonl"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want ErrNotExist", err)
	}
}

func TestLoadDirectory_ScenarioB(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl", userLine("late", "2025-01-02T09:00:00Z", "late"))
	writeFile(t, dir, "b.jsonl",
		`{"type":"summary","summary":"s","leafUuid":"early"}`,
		userLine("early", "2025-01-01T09:00:00Z", "early"),
	)
	writeFile(t, dir, "ignored.txt", "not a transcript")

	entries, err := New(Options{Workers: 2}).LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, model.UUID(e))
	}
	assertEqual(t, "order", "[early early late]", fmt.Sprint(got))
	if _, ok := entries[0].(*model.SummaryEntry); !ok {
		t.Errorf("summary should sort first, got %T", entries[0])
	}
}

func TestLoadDirectory_SortsByInstant(t *testing.T) {
	dir := t.TempDir()
	// 10:00+05:00 is 05:00Z, earlier than 06:00Z despite sorting later as text
	writeFile(t, dir, "a.jsonl",
		userLine("b", "2025-01-01T06:00:00Z", "b"),
		userLine("a", "2025-01-01T10:00:00+05:00", "a"),
	)
	entries, err := New(Options{}).LoadDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "first", "a", model.UUID(entries[0]))
}

func TestLoad_ScenarioC_Today(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	old := today.AddDate(0, 0, -2)

	path := writeFile(t, t.TempDir(), "a.jsonl",
		userLine("old", old.Format(time.RFC3339), "old"),
		userLine("new", today.Format(time.RFC3339), "new"),
		userLine("bad", "not a time", "bad"),
		`{"type":"summary","summary":"s","leafUuid":"new"}`,
	)
	entries, err := New(Options{From: "today", Now: func() time.Time { return now }}).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, model.UUID(e))
	}
	assertEqual(t, "kept", "[new new]", fmt.Sprint(got))
}

func TestLoad_BadRange(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.jsonl", userLine("u", "2025-01-01T00:00:00Z", "x"))
	if _, err := New(Options{From: "not a date at all ???"}).Load(path); err == nil {
		t.Error("want error for unparseable from-date")
	}
}

type memCache struct {
	mu      sync.Mutex
	data    map[string][]model.Entry
	fp      scan.Fingerprint
	saves   int
	lookups int
}

func (c *memCache) LoadCachedEntries(path string) ([]model.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	e, ok := c.data[path]
	return e, ok
}

func (c *memCache) LoadCachedEntriesFiltered(path string, from, to *time.Time) ([]model.Entry, bool) {
	return c.LoadCachedEntries(path)
}

func (c *memCache) SaveCachedEntries(path string, fp scan.Fingerprint, entries []model.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]model.Entry)
	}
	c.data[path] = entries
	c.fp = fp
	c.saves++
	return nil
}

func TestLoad_UsesCache(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.jsonl", userLine("u1", "2025-01-01T00:00:00Z", "hi"))
	cache := &memCache{}
	l := New(Options{Cache: cache})

	first, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "saves after miss", 1, cache.saves)

	// a hit must not touch the file
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load from cache: %v", err)
	}
	assertEqual(t, "saves after hit", 1, cache.saves)
	assertEqual(t, "len", len(first), len(second))
}

func TestLoad_SavesFingerprintOfBytesRead(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.jsonl", userLine("u1", "2025-01-01T00:00:00Z", "hi"))
	cache := &memCache{}
	if _, err := New(Options{Cache: cache}).Load(path); err != nil {
		t.Fatal(err)
	}
	want, err := scan.FingerprintFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "fingerprint", want, cache.fp)
}

func TestIndex(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.jsonl",
		userLine("root", "2025-01-01T00:00:00Z", "q"),
		childLine("c1", "root", "2025-01-01T00:00:01Z"),
		childLine("c2", "c1", "2025-01-01T00:00:02Z"),
		childLine("orphan", "elsewhere", "2025-01-01T00:00:03Z"),
	)
	entries, err := New(Options{}).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	ix := NewIndex(entries)

	p, ok := ix.Parent(entries[2])
	if !ok || model.UUID(p) != "c1" {
		t.Errorf("parent of c2 = %v, %v", p, ok)
	}
	if _, ok := ix.Parent(entries[3]); ok {
		t.Error("dangling parent should not resolve")
	}
	assertEqual(t, "roots", 2, len(ix.Roots()))
	assertEqual(t, "children of root", 1, len(ix.Children("root")))

	var chain []string
	for _, e := range ix.Chain("c2") {
		chain = append(chain, model.UUID(e))
	}
	assertEqual(t, "chain", "[root c1 c2]", fmt.Sprint(chain))
}
