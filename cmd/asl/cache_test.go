package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/ai-session-log/internal/cache"
	"github.com/Zuo-Peng/ai-session-log/internal/config"
	"github.com/Zuo-Peng/ai-session-log/internal/parse"
	"github.com/Zuo-Peng/ai-session-log/internal/transcript"
)

const warmLine = `{"type":"user","uuid":"u1","parentUuid":null,"timestamp":"2025-01-01T10:00:00Z","isSidechain":false,"userType":"external","cwd":"/p","sessionId":"s1","version":"1","message":{"role":"user","content":"hi"}}` + "\n"

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	m, err := cache.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return &app{
		cfg:     &config.Config{ProjectsRoot: filepath.Join(dir, "projects"), Workers: 1},
		cache:   m,
		parser:  parse.New(),
		skipped: &transcript.Collector{},
	}
}

func TestWarmCache(t *testing.T) {
	a := testApp(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "s.jsonl"), []byte(warmLine), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, added, after, err := warmCache(a, dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != 1 || added != 1 || after.Files != 1 {
		t.Errorf("loaded=%d added=%d files=%d, want 1 1 1", loaded, added, after.Files)
	}

	// second pass is served from the cache
	_, added, _, err = warmCache(a, dir)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("added=%d on second pass, want 0", added)
	}
}

func TestWarmCache_StatsErrorIsReturned(t *testing.T) {
	a := testApp(t)
	a.cache.Close()

	if _, _, _, err := warmCache(a, t.TempDir()); err == nil {
		t.Fatal("want error from a closed cache")
	}
}
