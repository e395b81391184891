package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"taskboard/model"
)

// ExportVersion is written into every export file.
const ExportVersion = "1.0.0"

var (
	ErrInvalidImport = errors.New("invalid import data")
	ErrNoValidLists  = fmt.Errorf("%w: no valid lists found", ErrInvalidImport)
	ErrNothingSaved  = errors.New("no lists to export")
)

// ExportData is the backup file payload.
type ExportData struct {
	Lists      []model.List
	ExportedAt time.Time
	Version    string
}

func (d ExportData) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireExport{
		Lists:      toWireLists(d.Lists),
		ExportedAt: stamp(d.ExportedAt),
		Version:    d.Version,
	})
}

// ExportFilename names a backup taken at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("todo-backup-%s.json", now.Format(time.DateOnly))
}

// Export snapshots the persisted lists. ok is false when no lists are
// persisted.
func (s *Storage) Export() (ExportData, bool) {
	rec, ok := s.LoadAppState()
	if !ok || len(rec.Lists) == 0 {
		s.logger.Warn("Export skipped", slog.String("error", ErrNothingSaved.Error()))
		return ExportData{}, false
	}
	return ExportData{Lists: rec.Lists, ExportedAt: s.now(), Version: ExportVersion}, true
}

// Import validates an export file and overwrites the persisted lists with
// its valid lists. Lists lacking an id, a name or an items array are
// dropped. Nothing is written when validation fails. The running state is
// not touched; callers reload it.
func (s *Storage) Import(data []byte) error {
	lists, err := parseImport(data)
	if err != nil {
		s.logger.Warn("Import rejected", slog.String("error", err.Error()))
		return err
	}
	return s.writeImported(lists)
}

// ImportData is Import for an already decoded payload.
func (s *Storage) ImportData(d ExportData) error {
	valid := make([]model.List, 0, len(d.Lists))
	for _, l := range d.Lists {
		if l.ID != "" && l.Name != "" && l.Items != nil {
			valid = append(valid, l)
		}
	}
	if len(valid) == 0 {
		s.logger.Warn("Import rejected", slog.String("error", ErrNoValidLists.Error()))
		return ErrNoValidLists
	}
	return s.writeImported(valid)
}

func (s *Storage) writeImported(lists []model.List) error {
	if err := s.save(WithLists(lists)); err != nil {
		s.logger.Error("Failed to save imported lists", slog.String("error", err.Error()))
		return fmt.Errorf("save imported lists: %w", err)
	}
	s.logger.Info("Imported lists", slog.Int("count", len(lists)))
	return nil
}

func parseImport(data []byte) ([]model.List, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	raw, ok := env["lists"]
	if !ok || !isArray(raw) {
		return nil, fmt.Errorf("%w: lists must be an array", ErrInvalidImport)
	}
	var candidates []json.RawMessage
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	valid := make([]wireList, 0, len(candidates))
	for _, c := range candidates {
		if !hasListShape(c) {
			continue
		}
		var wl wireList
		if err := json.Unmarshal(c, &wl); err != nil {
			continue
		}
		valid = append(valid, wl)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidLists
	}
	return fromWireLists(valid), nil
}

// hasListShape reports whether raw is an object with a non-empty string id,
// a non-empty string name and an items array.
func hasListShape(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	var id, name string
	if json.Unmarshal(obj["id"], &id) != nil || id == "" {
		return false
	}
	if json.Unmarshal(obj["name"], &name) != nil || name == "" {
		return false
	}
	return isArray(obj["items"])
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
