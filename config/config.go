// Package config holds the YAML configuration for the attackmap binary.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Attackmap AttackmapConfig `yaml:"attackmap"`
}

// AttackmapConfig is the project configuration.
type AttackmapConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Cache     CacheConfig     `yaml:"cache"`
	Generator GeneratorConfig `yaml:"generator"`
	Response  ResponseConfig  `yaml:"response"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogConfig controls the primary catalog source.
type CatalogConfig struct {
	SourceURL    string        `yaml:"source_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Offline      bool          `yaml:"offline"`
}

// CacheConfig selects the catalog cache backend.
type CacheConfig struct {
	Backend string           `yaml:"backend"` // file|redis|none
	File    FileCacheConfig  `yaml:"file"`
	Redis   RedisCacheConfig `yaml:"redis"`
}

// FileCacheConfig config for the file-backed cache.
type FileCacheConfig struct {
	Path string `yaml:"path"`
}

// RedisCacheConfig config for the redis-backed cache.
type RedisCacheConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// GeneratorConfig sets attack path generation defaults.
type GeneratorConfig struct {
	PathsPerEntry int     `yaml:"paths_per_entry"`
	MaxPathLength int     `yaml:"max_path_length"`
	MinStepScore  float64 `yaml:"min_step_score"`
}

// ResponseConfig controls agent-mode response trimming.
type ResponseConfig struct {
	TokenBudget int `yaml:"token_budget"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// Load reads and parses a YAML config file. An empty path yields the
// defaults without touching the filesystem.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	a := &cfg.Attackmap

	if a.Catalog.FetchTimeout <= 0 {
		a.Catalog.FetchTimeout = 60 * time.Second
	}
	if a.Cache.Backend == "" {
		a.Cache.Backend = "file"
	}
	if a.Cache.File.Path == "" {
		a.Cache.File.Path = defaultCachePath()
	}
	if a.Cache.Redis.Addr == "" {
		a.Cache.Redis.Addr = "127.0.0.1:6379"
	}
	if a.Cache.Redis.KeyPrefix == "" {
		a.Cache.Redis.KeyPrefix = "attackmap"
	}
	if a.Generator.PathsPerEntry == 0 {
		a.Generator.PathsPerEntry = 3
	}
	if a.Generator.MaxPathLength == 0 {
		a.Generator.MaxPathLength = 5
	}
	if a.Generator.MinStepScore == 0 {
		a.Generator.MinStepScore = 1.0
	}
	if a.Response.TokenBudget == 0 {
		a.Response.TokenBudget = 500
	}
	if a.Logging.Level == "" {
		a.Logging.Level = "info"
	}
}

// defaultCachePath places the cached bundle under the user cache directory,
// falling back to a dot directory in the working directory.
func defaultCachePath() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		return filepath.Join(".attackmap-cache", "enterprise-attack.json")
	}
	return filepath.Join(base, "attackmap", "enterprise-attack.json")
}

// SlogLevel maps the configured level name onto a slog level. Unknown names
// mean info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
