// Package config loads taskboard settings from YAML files and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var Backends = []string{BackendFile, BackendSQLite, BackendMemory}

// Config is the complete taskboard configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where state is kept.
type StorageConfig struct {
	// Dir holds the state files or database. Empty means ~/.taskboard.
	Dir string `yaml:"dir"`
	// Backend is one of file, sqlite or memory.
	Backend string `yaml:"backend"`
	// Backups is how many rotating backups the file backend keeps.
	Backups int `yaml:"backups"`
}

type UIConfig struct {
	SearchDebounce  time.Duration `yaml:"searchDebounce"`
	DefaultListName string        `yaml:"defaultListName"`
}

type LogConfig struct {
	// Level is a slog level name: debug, info, warn or error.
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:     "",
			Backend: BackendFile,
			Backups: 10,
		},
		UI: UIConfig{
			SearchDebounce:  300 * time.Millisecond,
			DefaultListName: "My Tasks",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Storage.Backend) {
		return fmt.Errorf("storage.backend must be one of %s, got %q", strings.Join(Backends, "|"), c.Storage.Backend)
	}
	if c.Storage.Backups < 0 {
		return fmt.Errorf("storage.backups must not be negative")
	}
	if c.UI.SearchDebounce < 0 {
		return fmt.Errorf("ui.searchDebounce must not be negative")
	}
	if strings.TrimSpace(c.UI.DefaultListName) == "" {
		return fmt.Errorf("ui.defaultListName is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge copies the non-zero fields of other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Storage.Dir != "" {
		c.Storage.Dir = other.Storage.Dir
	}
	if other.Storage.Backend != "" {
		c.Storage.Backend = other.Storage.Backend
	}
	if other.Storage.Backups != 0 {
		c.Storage.Backups = other.Storage.Backups
	}
	if other.UI.SearchDebounce != 0 {
		c.UI.SearchDebounce = other.UI.SearchDebounce
	}
	if other.UI.DefaultListName != "" {
		c.UI.DefaultListName = other.UI.DefaultListName
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
