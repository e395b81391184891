package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	UserConfigDir  = ".config/taskboard"
	UserConfigFile = "config.yaml"
	DefaultDataDir = ".taskboard"

	EnvDir      = "TASKBOARD_DIR"
	EnvBackend  = "TASKBOARD_BACKEND"
	EnvLogLevel = "TASKBOARD_LOG_LEVEL"
)

// Loader builds a Config from, in increasing precedence: defaults, the user
// config file (or an explicit file), then environment variables.
type Loader struct {
	logger *slog.Logger

	// Home and Getenv default to os.UserHomeDir and os.Getenv.
	Home   func() (string, error)
	Getenv func(string) string
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, Home: os.UserHomeDir, Getenv: os.Getenv}
}

// Load resolves the configuration. When path is set that file must exist;
// otherwise the user config file is read if present.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", path))
		config.Merge(fileConfig)
	} else if userPath := l.userConfigPath(); userPath != "" {
		if userConfig, err := LoadFromFile(userPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userPath), slog.String("error", err.Error()))
		}
	}

	l.applyEnv(config)

	if config.Storage.Dir == "" {
		if home, err := l.Home(); err == nil {
			config.Storage.Dir = filepath.Join(home, DefaultDataDir)
		} else {
			config.Storage.Dir = DefaultDataDir
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) applyEnv(c *Config) {
	if v := strings.TrimSpace(l.Getenv(EnvDir)); v != "" {
		c.Storage.Dir = v
	}
	if v := strings.TrimSpace(l.Getenv(EnvBackend)); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(l.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// UserConfigPath returns ~/.config/taskboard/config.yaml, or "" without a
// home directory.
func (l *Loader) UserConfigPath() string { return l.userConfigPath() }

func (l *Loader) userConfigPath() string {
	home, err := l.Home()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
