package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"taskboard/model"
	"taskboard/state"
	"taskboard/store"
)

// Open loads the persisted record, theme and history into the running
// state. Missing or unreadable data leaves the defaults in place.
func (s *Service) Open() {
	s.historyMu.Lock()
	s.history = s.storage.LoadHistory()
	s.historyMu.Unlock()

	s.hydrate()
	if theme, ok := s.storage.LoadTheme(); ok {
		s.withoutPersist(func() { s.dispatch(state.SetTheme{Theme: theme}) })
	}
}

func (s *Service) hydrate() {
	rec, ok := s.storage.LoadAppState()
	if !ok {
		return
	}
	fields := normalizeRecord(rec)
	none := []string{}
	fields.SelectedItems = &none
	s.withoutPersist(func() { s.dispatch(fields) })
	s.logger.Debug("Loaded state",
		slog.Int("lists", len(s.State().Lists)),
		slog.Time("last_updated", rec.LastUpdated))
}

func (s *Service) withoutPersist(fn func()) {
	s.hydrating.Store(true)
	defer s.hydrating.Store(false)
	fn()
}

// normalizeRecord repairs a loaded record so it satisfies the state
// invariants: items point at the list holding them and the active list
// exists, or is empty only when there are no lists.
func normalizeRecord(rec store.Record) state.ReplaceFields {
	var out state.ReplaceFields
	lists := rec.Lists
	if lists != nil {
		for i := range lists {
			if lists[i].Items == nil {
				lists[i].Items = []model.Item{}
			}
			for j := range lists[i].Items {
				lists[i].Items[j].ListID = lists[i].ID
			}
		}
		out.Lists = &lists
	}

	if rec.ActiveListID != nil || lists != nil {
		active := ""
		if rec.ActiveListID != nil {
			active = *rec.ActiveListID
		}
		if !listExists(lists, active) {
			active = ""
			if len(lists) > 0 {
				active = lists[0].ID
			}
		}
		out.ActiveListID = &active
	}

	if rec.GroupBy != nil {
		g := *rec.GroupBy
		if !g.Valid() {
			g = model.GroupNone
		}
		out.GroupBy = &g
	}
	if rec.Filters != nil {
		f := *rec.Filters
		out.Filters = &f
	}
	return out
}

func listExists(lists []model.List, id string) bool {
	for _, l := range lists {
		if l.ID == id {
			return true
		}
	}
	return false
}

// persist runs after every transition. The record is rewritten when any of
// its fields changed; the theme has its own key.
func (s *Service) persist(prev, next model.AppState, a state.Action) {
	if s.hydrating.Load() {
		return
	}
	if prev.ActiveListID != next.ActiveListID ||
		prev.GroupBy != next.GroupBy ||
		!reflect.DeepEqual(prev.Lists, next.Lists) ||
		!reflect.DeepEqual(prev.Filters, next.Filters) {
		s.storage.SaveAppState(store.PersistedFields(next)...)
	}
	if prev.Theme != next.Theme {
		s.storage.SaveTheme(next.Theme)
	}
	s.record(a)
}

// record appends a to the action history, keeping the newest entries.
func (s *Service) record(a state.Action) {
	data, err := json.Marshal(a)
	if err != nil {
		s.logger.Warn("Failed to encode action", slog.String("action", string(a.Kind())), slog.String("error", err.Error()))
		data = nil
	}
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.history = append(s.history, model.HistoryEntry{
		ID:        s.newID(),
		Action:    string(a.Kind()),
		Data:      data,
		Timestamp: s.now(),
	})
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	s.storage.SaveHistory(s.history)
}

// History returns the recorded actions, oldest first.
func (s *Service) History() []model.HistoryEntry {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	out := make([]model.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Export snapshots the persisted lists.
func (s *Service) Export() (store.ExportData, bool) {
	return s.storage.Export()
}

// WriteExport writes the export file to w.
func (s *Service) WriteExport(w io.Writer) error {
	d, ok := s.storage.Export()
	if !ok {
		return store.ErrNothingSaved
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import replaces the persisted lists with the valid lists read from r and
// reloads the running state from storage.
func (s *Service) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	s.search.Cancel()
	if err := s.storage.Import(data); err != nil {
		return err
	}
	s.hydrate()
	return nil
}

// ClearAll erases the persisted record and history and resets the running
// state. The theme is kept.
func (s *Service) ClearAll() bool {
	s.search.Cancel()
	if !s.storage.ClearAll() {
		return false
	}
	fresh := model.NewState()
	s.withoutPersist(func() {
		s.dispatch(state.ReplaceFields{
			Lists:         &fresh.Lists,
			ActiveListID:  &fresh.ActiveListID,
			GroupBy:       &fresh.GroupBy,
			Filters:       &fresh.Filters,
			SelectedItems: &fresh.SelectedItems,
		})
	})
	s.historyMu.Lock()
	s.history = []model.HistoryEntry{}
	s.historyMu.Unlock()
	return true
}

func (s *Service) Usage() store.Usage {
	return s.storage.Usage()
}
