package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskboard/model"
)

// UsageBudget is the nominal capacity the state record is measured against.
const UsageBudget = 5 * 1024 * 1024

// Storage reads and writes the application record on top of a KV. It never
// returns storage or parse failures to the caller: they are logged and the
// operation reports that it had no effect.
type Storage struct {
	kv     KV
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Storage. A nil logger uses slog.Default and a nil clock uses
// time.Now.
func New(kv KV, logger *slog.Logger, now func() time.Time) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Storage{kv: kv, logger: logger, now: now}
}

// Field is one top-level entry of the state record.
type Field struct {
	key   string
	value any
}

func WithLists(lists []model.List) Field {
	return Field{key: "lists", value: toWireLists(lists)}
}

// WithActiveList stores id, or null when id is empty.
func WithActiveList(id string) Field {
	if id == "" {
		return Field{key: "activeListId", value: nil}
	}
	return Field{key: "activeListId", value: id}
}

func WithGroupBy(g model.GroupBy) Field {
	return Field{key: "groupBy", value: g}
}

func WithFilters(f model.FilterOptions) Field {
	return Field{key: "filters", value: toWireFilters(f)}
}

// PersistedFields returns every persisted field of s. Theme and selection
// are not part of the record.
func PersistedFields(s model.AppState) []Field {
	return []Field{
		WithLists(s.Lists),
		WithActiveList(s.ActiveListID),
		WithGroupBy(s.GroupBy),
		WithFilters(s.Filters),
	}
}

// Record is the decoded state record. Nil fields were never saved.
type Record struct {
	Lists        []model.List
	ActiveListID *string
	GroupBy      *model.GroupBy
	Filters      *model.FilterOptions
	LastUpdated  time.Time
}

// SaveAppState merges fields into the stored record and stamps lastUpdated.
// Fields not given keep their previous value.
func (s *Storage) SaveAppState(fields ...Field) bool {
	if err := s.save(fields...); err != nil {
		s.logger.Error("Failed to save app state", slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *Storage) save(fields ...Field) error {
	rec := map[string]json.RawMessage{}
	data, ok, err := s.kv.Get(DataKey)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("Replacing unreadable state record", slog.String("error", err.Error()))
			rec = map[string]json.RawMessage{}
		}
		if rec == nil {
			s.logger.Warn("Replacing null state record")
			rec = map[string]json.RawMessage{}
		}
	}

	for _, f := range fields {
		raw, err := json.Marshal(f.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.key, err)
		}
		rec[f.key] = raw
	}
	stampRaw, err := json.Marshal(stamp(s.now()))
	if err != nil {
		return err
	}
	rec["lastUpdated"] = stampRaw

	out, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.kv.Set(DataKey, out)
}

// LoadAppState returns the stored record. ok is false when nothing was
// saved or the record cannot be decoded; a partial record is never returned.
func (s *Storage) LoadAppState() (Record, bool) {
	rec, ok, err := s.load()
	if err != nil {
		s.logger.Error("Failed to load app state", slog.String("error", err.Error()))
		return Record{}, false
	}
	return rec, ok
}

func (s *Storage) load() (Record, bool, error) {
	data, ok, err := s.kv.Get(DataKey)
	if err != nil || !ok {
		return Record{}, false, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, false, fmt.Errorf("decode record: %w", err)
	}
	if raw == nil {
		s.logger.Warn("Ignoring null state record")
		return Record{}, false, nil
	}

	var rec Record
	if v, ok := raw["lists"]; ok {
		var wls []wireList
		if err := json.Unmarshal(v, &wls); err != nil {
			return Record{}, false, fmt.Errorf("decode lists: %w", err)
		}
		rec.Lists = fromWireLists(wls)
	}
	if v, ok := raw["activeListId"]; ok {
		var id *string
		if err := json.Unmarshal(v, &id); err != nil {
			return Record{}, false, fmt.Errorf("decode activeListId: %w", err)
		}
		active := ""
		if id != nil {
			active = *id
		}
		rec.ActiveListID = &active
	}
	if v, ok := raw["groupBy"]; ok {
		var g model.GroupBy
		if err := json.Unmarshal(v, &g); err != nil {
			return Record{}, false, fmt.Errorf("decode groupBy: %w", err)
		}
		rec.GroupBy = &g
	}
	if v, ok := raw["filters"]; ok {
		var wf wireFilters
		if err := json.Unmarshal(v, &wf); err != nil {
			return Record{}, false, fmt.Errorf("decode filters: %w", err)
		}
		f := fromWireFilters(wf)
		rec.Filters = &f
	}
	if v, ok := raw["lastUpdated"]; ok {
		var ts stamp
		if err := json.Unmarshal(v, &ts); err != nil {
			return Record{}, false, fmt.Errorf("decode lastUpdated: %w", err)
		}
		rec.LastUpdated = time.Time(ts)
	}
	return rec, true, nil
}

// SaveTheme stores the theme under its own key so it survives a lost record.
func (s *Storage) SaveTheme(t model.Theme) bool {
	if err := s.kv.Set(ThemeKey, []byte(t)); err != nil {
		s.logger.Error("Failed to save theme", slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *Storage) LoadTheme() (model.Theme, bool) {
	data, ok, err := s.kv.Get(ThemeKey)
	if err != nil {
		s.logger.Error("Failed to load theme", slog.String("error", err.Error()))
		return "", false
	}
	if !ok {
		return "", false
	}
	// Older files hold the JSON-quoted form.
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	t, err := model.ParseTheme(raw)
	if err != nil {
		s.logger.Warn("Ignoring unknown theme", slog.String("theme", raw))
		return "", false
	}
	return t, true
}

func (s *Storage) SaveHistory(entries []model.HistoryEntry) bool {
	wire := make([]wireHistoryEntry, 0, len(entries))
	for _, e := range entries {
		wire = append(wire, wireHistoryEntry{ID: e.ID, Action: e.Action, Data: e.Data, Timestamp: stamp(e.Timestamp)})
	}
	data, err := json.Marshal(wire)
	if err == nil {
		err = s.kv.Set(HistoryKey, data)
	}
	if err != nil {
		s.logger.Error("Failed to save history", slog.String("error", err.Error()))
		return false
	}
	return true
}

// LoadHistory returns the stored history, or an empty slice.
func (s *Storage) LoadHistory() []model.HistoryEntry {
	out := []model.HistoryEntry{}
	data, ok, err := s.kv.Get(HistoryKey)
	if err != nil {
		s.logger.Error("Failed to load history", slog.String("error", err.Error()))
		return out
	}
	if !ok {
		return out
	}
	var wire []wireHistoryEntry
	if err := json.Unmarshal(data, &wire); err != nil {
		s.logger.Warn("Ignoring unreadable history", slog.String("error", err.Error()))
		return out
	}
	for _, e := range wire {
		out = append(out, model.HistoryEntry{ID: e.ID, Action: e.Action, Data: e.Data, Timestamp: time.Time(e.Timestamp)})
	}
	return out
}

// ClearAll removes the state record and the history. The theme is kept.
func (s *Storage) ClearAll() bool {
	for _, key := range []string{DataKey, HistoryKey} {
		if err := s.kv.Delete(key); err != nil {
			s.logger.Error("Failed to clear data", slog.String("key", key), slog.String("error", err.Error()))
			return false
		}
	}
	return true
}

// Usage reports the size of the state record against UsageBudget.
type Usage struct {
	Used       int64
	Total      int64
	Percentage float64
}

func (s *Storage) Usage() Usage {
	data, _, err := s.kv.Get(DataKey)
	if err != nil {
		s.logger.Error("Failed to measure storage", slog.String("error", err.Error()))
		return Usage{}
	}
	used := int64(len(data))
	return Usage{
		Used:       used,
		Total:      UsageBudget,
		Percentage: float64(used) / UsageBudget * 100,
	}
}
