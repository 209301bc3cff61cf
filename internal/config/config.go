package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ProjectsRoot string `toml:"projects_root" envconfig:"PROJECTS_ROOT"`
	CachePath    string `toml:"cache_path" envconfig:"CACHE_PATH"`
	NoCache      bool   `toml:"no_cache" envconfig:"NO_CACHE"`
	Workers      int    `toml:"workers" envconfig:"WORKERS"`
	Width        int    `toml:"width" envconfig:"WIDTH"`
	Markdown     bool   `toml:"markdown" envconfig:"MARKDOWN"`
	LogLevel     string `toml:"log_level" envconfig:"LOG_LEVEL"`

	// Path is the config file that was read, empty if none existed.
	Path string `toml:"-" ignored:"true"`
}

// Load reads ~/.config/asl/config.toml over the defaults, then applies
// ASL_* environment overrides.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(home, ".config", "asl", "config.toml"), home)
}

// LoadFrom is Load with an explicit config file and home directory.
func LoadFrom(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		ProjectsRoot: filepath.Join(home, ".claude", "projects"),
		CachePath:    filepath.Join(home, ".config", "asl", "cache.db"),
		Width:        100,
		LogLevel:     "warn",
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		cfg.Path = cfgPath
	}

	if err := envconfig.Process("asl", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	// expand ~ in paths
	cfg.ProjectsRoot = expandHome(cfg.ProjectsRoot, home)
	cfg.CachePath = expandHome(cfg.CachePath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
