package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const DefaultMaxBackups = 10

var errNoValidBackup = errors.New("no valid backup found")

// FileKV stores each key as <dir>/<key>.json. Writes go through a temp file
// and an atomic rename, after copying the previous value to <key>.json.bak
// and to a rotating timestamped backup. A value that no longer decodes is
// moved aside and replaced by the newest valid backup. The theme key holds a
// bare string; every other key holds JSON.
type FileKV struct {
	dir        string
	maxBackups int
	logger     *slog.Logger
}

func NewFileKV(dir string, maxBackups int, logger *slog.Logger) *FileKV {
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileKV{dir: dir, maxBackups: maxBackups, logger: logger}
}

// Path returns the file backing key.
func (f *FileKV) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	path := f.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if validValue(key, data) {
		return data, true, nil
	}
	return f.recover(key, path)
}

// Set replaces the value for key. On failure the previous file is untouched.
func (f *FileKV) Set(key string, value []byte) error {
	path := f.Path(key)
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	if err := f.backup(key, path); err != nil {
		return err
	}
	return writeAtomic(path, value)
}

// Delete removes the value for key. Backups are left in place.
func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileKV) recover(key, path string) ([]byte, bool, error) {
	corruptPath, err := moveCorruptFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("move corrupt file: %w", err)
	}

	data, backupPath, err := latestValidBackup(key, path)
	if errors.Is(err, errNoValidBackup) {
		f.logger.Warn("Corrupt file without valid backup",
			slog.String("path", path), slog.String("moved_to", corruptPath))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("inspect backups: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return nil, false, fmt.Errorf("restore backup: %w", err)
	}
	f.logger.Warn("Recovered corrupt file from backup",
		slog.String("path", path),
		slog.String("backup", filepath.Base(backupPath)),
		slog.String("moved_to", filepath.Base(corruptPath)))
	return data, true, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (f *FileKV) backup(key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if !validValue(key, data) {
		return nil
	}

	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return err
	}
	timestamp := time.Now().UTC().Format("20060102-150405.000000000")
	if err := os.WriteFile(fmt.Sprintf("%s.bak.%s", path, timestamp), data, 0o644); err != nil {
		return err
	}
	return f.pruneBackups(path)
}

func (f *FileKV) pruneBackups(path string) error {
	files, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return err
	}
	if len(files) <= f.maxBackups {
		return nil
	}
	sort.Strings(files)
	for _, old := range files[:len(files)-f.maxBackups] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// latestValidBackup returns the newest backup holding a valid value, trying
// the .bak copy first and then rotating backups newest to oldest.
func latestValidBackup(key, path string) ([]byte, string, error) {
	candidates := make([]string, 0, DefaultMaxBackups+1)
	if _, err := os.Stat(path + ".bak"); err == nil {
		candidates = append(candidates, path+".bak")
	}
	rotating, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return nil, "", err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(rotating)))
	candidates = append(candidates, rotating...)

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil || !validValue(key, data) {
			continue
		}
		return data, candidate, nil
	}
	return nil, "", errNoValidBackup
}

// validValue reports whether data is a readable value for key.
func validValue(key string, data []byte) bool {
	if key == ThemeKey {
		return len(bytes.TrimSpace(data)) > 0
	}
	return json.Valid(data)
}

func moveCorruptFile(path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	timestamp := time.Now().UTC().Format("20060102-150405")
	corruptPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.corrupt-%s%s", name, timestamp, ext))
	if err := os.Rename(path, corruptPath); err != nil {
		return "", err
	}
	return corruptPath, nil
}
