package view

import (
	"sync"
	"time"

	"taskboard/model"
	"taskboard/state"
)

// Result is the derived view of the active list.
type Result struct {
	ListID string
	Total  int // items in the active list before filtering
	Items  []model.Item
	Groups []Group
}

// Visible filters and groups the active list's items. With no active list
// the result is empty.
func Visible(s model.AppState, now time.Time) Result {
	list, ok := s.ActiveList()
	if !ok {
		return Result{Items: []model.Item{}, Groups: []Group{}}
	}
	items := Apply(list.Items, s.Filters)
	return Result{
		ListID: list.ID,
		Total:  len(list.Items),
		Items:  items,
		Groups: GroupItems(items, s.GroupBy, now),
	}
}

// Memo caches the last Visible result per store version and calendar day.
// Date buckets move at midnight, so the day is part of the key.
type Memo struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	day     string
	result  Result
}

func (m *Memo) Visible(snap state.Snapshot, now time.Time) Result {
	day := now.Format(time.DateOnly)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.version == snap.Version && m.day == day {
		return m.result
	}
	m.result = Visible(snap.State, now)
	m.version = snap.Version
	m.day = day
	m.valid = true
	return m.result
}
