package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(home, "missing.toml"), home)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProjectsRoot != filepath.Join(home, ".claude", "projects") {
		t.Errorf("ProjectsRoot = %q", cfg.ProjectsRoot)
	}
	if cfg.CachePath != filepath.Join(home, ".config", "asl", "cache.db") {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.Path != "" || cfg.NoCache || cfg.Width != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	content := `projects_root = "~/logs"
workers = 3
no_cache = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASL_WORKERS", "8")
	t.Setenv("ASL_CACHE_PATH", "~/c.db")

	cfg, err := LoadFrom(path, home)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProjectsRoot != filepath.Join(home, "logs") {
		t.Errorf("ProjectsRoot = %q", cfg.ProjectsRoot)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want env override 8", cfg.Workers)
	}
	if !cfg.NoCache {
		t.Error("NoCache should come from file")
	}
	if cfg.CachePath != filepath.Join(home, "c.db") {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte("workers = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path, home); err == nil {
		t.Error("want parse error")
	}
}
