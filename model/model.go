package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Priority is the urgency of an item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities: high=3, medium=2, low=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Status is the progress state of an item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Toggled returns the status a toggle produces. Toggling is binary:
// completed goes back to pending, every other status becomes completed.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Rank orders statuses for sorting: pending=3, in-progress=2, completed=1.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 3
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 1
	}
	return 0
}

// GroupBy selects how the visible items are partitioned.
type GroupBy string

const (
	GroupNone     GroupBy = "none"
	GroupPriority GroupBy = "priority"
	GroupStatus   GroupBy = "status"
	GroupDate     GroupBy = "date"
	GroupLabels   GroupBy = "labels"
)

var GroupBys = []GroupBy{GroupNone, GroupPriority, GroupStatus, GroupDate, GroupLabels}

func (g GroupBy) Valid() bool {
	return slices.Contains(GroupBys, g)
}

// Next cycles through the grouping modes in declaration order.
func (g GroupBy) Next() GroupBy {
	i := slices.Index(GroupBys, g)
	return GroupBys[(i+1)%len(GroupBys)]
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (want high|medium|low)", s)
	}
	return p, nil
}

func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "_", "-")
	if v == "in progress" {
		v = string(StatusInProgress)
	}
	st := Status(v)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (want pending|in-progress|completed)", s)
	}
	return st, nil
}

func ParseGroupBy(s string) (GroupBy, error) {
	g := GroupBy(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("invalid group-by %q (want none|priority|status|date|labels)", s)
	}
	return g, nil
}

func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid theme %q (want light|dark)", s)
	}
	return t, nil
}

// Item is a single task inside a list.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Labels      []string   `json:"labels"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ListID      string     `json:"listId"`
}

// HasLabel reports whether the item carries label exactly.
func (it Item) HasLabel(label string) bool {
	return slices.Contains(it.Labels, label)
}

// List owns an ordered sequence of items.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Items     []Item    `json:"items"`
}

// IndexOf returns the position of item id in the list, or -1.
func (l List) IndexOf(itemID string) int {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// DateRange bounds due dates. A nil bound is open on that side.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (r DateRange) IsSet() bool {
	return r.Start != nil || r.End != nil
}

// FilterOptions narrows the visible items. Empty criteria do not restrict.
type FilterOptions struct {
	Priority    []Priority `json:"priority"`
	Status      []Status   `json:"status"`
	Labels      []string   `json:"labels"`
	DateRange   DateRange  `json:"dateRange"`
	SearchQuery string     `json:"searchQuery"`
}

// DefaultFilters returns the empty filter set.
func DefaultFilters() FilterOptions {
	return FilterOptions{
		Priority: []Priority{},
		Status:   []Status{},
		Labels:   []string{},
	}
}

func (f FilterOptions) IsEmpty() bool {
	return len(f.Priority) == 0 &&
		len(f.Status) == 0 &&
		len(f.Labels) == 0 &&
		!f.DateRange.IsSet() &&
		strings.TrimSpace(f.SearchQuery) == ""
}

// AppState is the single authoritative application state.
// ActiveListID is empty when no list is active.
type AppState struct {
	Lists         []List        `json:"lists"`
	ActiveListID  string        `json:"activeListId"`
	Theme         Theme         `json:"theme"`
	GroupBy       GroupBy       `json:"groupBy"`
	Filters       FilterOptions `json:"filters"`
	SelectedItems []string      `json:"selectedItems"`
}

// NewState returns an initialized empty state.
func NewState() AppState {
	return AppState{
		Lists:         []List{},
		ActiveListID:  "",
		Theme:         ThemeLight,
		GroupBy:       GroupNone,
		Filters:       DefaultFilters(),
		SelectedItems: []string{},
	}
}

// NewList builds a list with both timestamps set to now.
func NewList(id, name string, now time.Time) List {
	return List{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     []Item{},
	}
}

// ItemOptions overrides the defaults of a new item.
type ItemOptions struct {
	Description string
	DueDate     *time.Time
	Priority    Priority
	Status      Status
	Labels      []string
}

// NewItem builds an item with both timestamps set to now.
// Zero-valued options fall back to medium priority, pending status and no labels.
func NewItem(id, title, listID string, now time.Time, opts ItemOptions) Item {
	priority := opts.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	status := opts.Status
	if status == "" {
		status = StatusPending
	}
	return Item{
		ID:          id,
		Title:       title,
		Description: opts.Description,
		DueDate:     CopyTime(opts.DueDate),
		Priority:    priority,
		Status:      status,
		Labels:      NormalizeLabels(opts.Labels),
		CreatedAt:   now,
		UpdatedAt:   now,
		ListID:      listID,
	}
}

// NormalizeLabels trims labels, drops empty ones and removes duplicates
// keeping the first occurrence.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func CopyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// FindList returns the list with id.
func (s AppState) FindList(id string) (List, bool) {
	for _, l := range s.Lists {
		if l.ID == id {
			return l, true
		}
	}
	return List{}, false
}

func (s AppState) HasList(id string) bool {
	_, ok := s.FindList(id)
	return ok
}

// ActiveList returns the active list when one is set and exists.
func (s AppState) ActiveList() (List, bool) {
	if s.ActiveListID == "" {
		return List{}, false
	}
	return s.FindList(s.ActiveListID)
}

// FindItem looks an item up across every list.
func (s AppState) FindItem(id string) (Item, bool) {
	for _, l := range s.Lists {
		if i := l.IndexOf(id); i >= 0 {
			return l.Items[i], true
		}
	}
	return Item{}, false
}

// AllItems flattens every list's items in list order.
func (s AppState) AllItems() []Item {
	out := make([]Item, 0)
	for _, l := range s.Lists {
		out = append(out, l.Items...)
	}
	return out
}

// Clone deep-copies the state so the result shares no slices or pointers
// with the receiver.
func (s AppState) Clone() AppState {
	out := s
	out.Lists = make([]List, len(s.Lists))
	for i, l := range s.Lists {
		out.Lists[i] = l.Clone()
	}
	out.Filters = s.Filters.Clone()
	out.SelectedItems = slices.Clone(s.SelectedItems)
	if out.SelectedItems == nil {
		out.SelectedItems = []string{}
	}
	return out
}

func (l List) Clone() List {
	out := l
	out.Items = make([]Item, len(l.Items))
	for i, it := range l.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

func (it Item) Clone() Item {
	out := it
	out.DueDate = CopyTime(it.DueDate)
	out.Labels = slices.Clone(it.Labels)
	if out.Labels == nil {
		out.Labels = []string{}
	}
	return out
}

func (f FilterOptions) Clone() FilterOptions {
	out := f
	out.Priority = slices.Clone(f.Priority)
	out.Status = slices.Clone(f.Status)
	out.Labels = slices.Clone(f.Labels)
	if out.Priority == nil {
		out.Priority = []Priority{}
	}
	if out.Status == nil {
		out.Status = []Status{}
	}
	if out.Labels == nil {
		out.Labels = []string{}
	}
	out.DateRange = DateRange{Start: CopyTime(f.DateRange.Start), End: CopyTime(f.DateRange.End)}
	return out
}
