package model

import (
	"reflect"
	"testing"
	"time"
)

func sampleState() AppState {
	now := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)
	return AppState{
		Lists: []List{{
			ID:        "l1",
			Name:      "Inbox",
			CreatedAt: now,
			UpdatedAt: now,
			Items: []Item{{
				ID:          "i1",
				Title:       "write tests",
				Description: "cover the reducer",
				DueDate:     &due,
				Priority:    PriorityHigh,
				Status:      StatusInProgress,
				Labels:      []string{"work", "go"},
				CreatedAt:   now,
				UpdatedAt:   now,
				ListID:      "l1",
			}},
		}},
		ActiveListID:  "l1",
		Theme:         ThemeDark,
		GroupBy:       GroupLabels,
		Filters:       FilterOptions{Priority: []Priority{PriorityHigh}, Status: []Status{}, Labels: []string{"go"}, DateRange: DateRange{Start: &now}},
		SelectedItems: []string{"i1"},
	}
}

func TestCloneSharesNoMemory(t *testing.T) {
	state := sampleState()
	clone := state.Clone()

	if !reflect.DeepEqual(state, clone) {
		t.Fatalf("clone mismatch\nwant=%+v\ngot=%+v", state, clone)
	}

	clone.Lists[0].Items[0].Labels[0] = "changed"
	*clone.Lists[0].Items[0].DueDate = time.Time{}
	clone.Filters.Priority[0] = PriorityLow
	*clone.Filters.DateRange.Start = time.Time{}
	clone.SelectedItems[0] = "other"
	clone.Lists[0].Name = "Renamed"

	if state.Lists[0].Items[0].Labels[0] != "work" {
		t.Fatalf("labels leaked through clone")
	}
	if state.Lists[0].Items[0].DueDate.IsZero() {
		t.Fatalf("due date leaked through clone")
	}
	if state.Filters.Priority[0] != PriorityHigh || state.Filters.DateRange.Start.IsZero() {
		t.Fatalf("filters leaked through clone")
	}
	if state.SelectedItems[0] != "i1" || state.Lists[0].Name != "Inbox" {
		t.Fatalf("selection or list leaked through clone")
	}
}

func TestStatusToggleIsBinary(t *testing.T) {
	tests := []struct {
		in   Status
		want Status
	}{
		{StatusPending, StatusCompleted},
		{StatusInProgress, StatusCompleted},
		{StatusCompleted, StatusPending},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := tt.in.Toggled(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewItemDefaultsAndTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	it := NewItem("i1", "Buy milk", "l1", now, ItemOptions{Labels: []string{" home ", "home", "", "errand"}})

	if it.Priority != PriorityMedium || it.Status != StatusPending {
		t.Fatalf("unexpected defaults: priority=%q status=%q", it.Priority, it.Status)
	}
	if !it.CreatedAt.Equal(now) || !it.UpdatedAt.Equal(now) {
		t.Fatalf("expected both timestamps to equal now, got created=%v updated=%v", it.CreatedAt, it.UpdatedAt)
	}
	if it.DueDate != nil {
		t.Fatalf("expected no due date, got %v", it.DueDate)
	}
	if !reflect.DeepEqual(it.Labels, []string{"home", "errand"}) {
		t.Fatalf("expected normalized labels, got %#v", it.Labels)
	}

	l := NewList("l1", "Inbox", now)
	if !l.CreatedAt.Equal(l.UpdatedAt) || len(l.Items) != 0 {
		t.Fatalf("unexpected new list: %+v", l)
	}
}

func TestParseEnums(t *testing.T) {
	if p, err := ParsePriority(" HIGH "); err != nil || p != PriorityHigh {
		t.Fatalf("parse priority: %q %v", p, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
	for _, in := range []string{"in-progress", "in_progress", "In Progress"} {
		if s, err := ParseStatus(in); err != nil || s != StatusInProgress {
			t.Fatalf("parse status %q: %q %v", in, s, err)
		}
	}
	if g, err := ParseGroupBy("labels"); err != nil || g != GroupLabels {
		t.Fatalf("parse group-by: %q %v", g, err)
	}
	if _, err := ParseTheme("blue"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestGroupByNextCycles(t *testing.T) {
	g := GroupNone
	seen := map[GroupBy]bool{}
	for range GroupBys {
		seen[g] = true
		g = g.Next()
	}
	if g != GroupNone || len(seen) != len(GroupBys) {
		t.Fatalf("expected a full cycle back to none, ended at %q after %d modes", g, len(seen))
	}
}

func TestDefaultFiltersAreEmpty(t *testing.T) {
	if !DefaultFilters().IsEmpty() {
		t.Fatalf("expected default filters to be empty")
	}
	f := DefaultFilters()
	f.SearchQuery = "  "
	if !f.IsEmpty() {
		t.Fatalf("expected blank search to count as empty")
	}
	f.Labels = []string{"x"}
	if f.IsEmpty() {
		t.Fatalf("expected label filter to be non-empty")
	}
}
