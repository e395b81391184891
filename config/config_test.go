package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 10, cfg.Storage.Backups)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, "My Tasks", cfg.UI.DefaultListName)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"sqlite backend", func(c *Config) { c.Storage.Backend = BackendSQLite }, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"negative backups", func(c *Config) { c.Storage.Backups = -1 }, true},
		{"negative debounce", func(c *Config) { c.UI.SearchDebounce = -time.Second }, true},
		{"blank default list", func(c *Config) { c.UI.DefaultListName = " " }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendSQLite
	cfg.UI.SearchDebounce = 150 * time.Millisecond
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  searchDebounce: 1s\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.UI.SearchDebounce)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "My Tasks", cfg.UI.DefaultListName)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{Storage: StorageConfig{Backend: BackendMemory}, Log: LogConfig{Level: "info"}})
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Storage.Backups)

	cfg.Merge(nil)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func newTestLoader(home string, env map[string]string) *Loader {
	l := NewLoader(nil)
	l.Home = func() (string, error) { return home, nil }
	l.Getenv = func(k string) string { return env[k] }
	return l
}

func TestLoaderLayering(t *testing.T) {
	home := t.TempDir()

	cfg, err := newTestLoader(home, nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDataDir), cfg.Storage.Dir)

	user := DefaultConfig()
	user.Storage.Backend = BackendSQLite
	user.Log.Level = "info"
	require.NoError(t, user.SaveToFile(filepath.Join(home, UserConfigDir, UserConfigFile)))

	cfg, err = newTestLoader(home, map[string]string{EnvLogLevel: "debug", EnvDir: "/tmp/boards"}).Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend, "user file applies")
	assert.Equal(t, "debug", cfg.Log.Level, "env wins over user file")
	assert.Equal(t, "/tmp/boards", cfg.Storage.Dir)
}

func TestLoaderExplicitPath(t *testing.T) {
	home := t.TempDir()
	_, err := newTestLoader(home, nil).Load(filepath.Join(home, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0o644))
	cfg, err := newTestLoader(home, nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoaderRejectsInvalidEnv(t *testing.T) {
	_, err := newTestLoader(t.TempDir(), map[string]string{EnvBackend: "postgres"}).Load("")
	assert.Error(t, err)
}
