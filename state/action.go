// Package state holds the single application state and the actions that
// transition it.
//
// Reduce is a pure function: it performs no I/O and generates no ids or
// timestamps. Everything it needs (new entities, "now") arrives in the action.
// Store serializes transitions so exactly one action is applied at a time.
package state

import (
	"time"

	"taskboard/model"
)

// Kind names an action variant.
type Kind string

const (
	KindReplaceFields   Kind = "SET_STATE"
	KindCreateList      Kind = "CREATE_LIST"
	KindDeleteList      Kind = "DELETE_LIST"
	KindUpdateList      Kind = "UPDATE_LIST"
	KindSetActiveList   Kind = "SET_ACTIVE_LIST"
	KindCreateItem      Kind = "CREATE_TODO_ITEM"
	KindUpdateItem      Kind = "UPDATE_TODO_ITEM"
	KindDeleteItem      Kind = "DELETE_TODO_ITEM"
	KindSetTheme        Kind = "SET_THEME"
	KindSetGroupBy      Kind = "SET_GROUP_BY"
	KindSetFilters      Kind = "SET_FILTERS"
	KindClearFilters    Kind = "CLEAR_FILTERS"
	KindSelectItems     Kind = "SELECT_ITEMS"
	KindBulkUpdateItems Kind = "BULK_UPDATE_ITEMS"
	KindBulkDeleteItems Kind = "BULK_DELETE_ITEMS"
	KindReorderItems    Kind = "REORDER_ITEMS"
)

// Action is a closed set of state transitions. The unexported apply method
// keeps the set sealed to this package and forces every variant to define
// its own effect.
type Action interface {
	Kind() Kind
	apply(s *model.AppState)
}

// ReplaceFields shallow-merges the non-nil fields into the state.
type ReplaceFields struct {
	Lists         *[]model.List
	ActiveListID  *string
	Theme         *model.Theme
	GroupBy       *model.GroupBy
	Filters       *model.FilterOptions
	SelectedItems *[]string
}

type CreateList struct {
	List model.List
}

type DeleteList struct {
	ID string
}

// ListPatch holds the list fields an update may change.
type ListPatch struct {
	Name *string
}

type UpdateList struct {
	ID    string
	Patch ListPatch
	At    time.Time
}

// SetActiveList does not verify that the list exists; callers must.
type SetActiveList struct {
	ID string
}

// CreateItem appends Item to the list named by Item.ListID.
type CreateItem struct {
	Item model.Item
	At   time.Time
}

// ItemPatch holds the item fields an update may change. Nil fields are left
// untouched. ClearDueDate removes the due date and wins over DueDate.
type ItemPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *model.Priority
	Status       *model.Status
	Labels       *[]string
}

func (p ItemPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Priority == nil && p.Status == nil && p.Labels == nil
}

type UpdateItem struct {
	ID    string
	Patch ItemPatch
	At    time.Time
}

type DeleteItem struct {
	ID string
	At time.Time
}

type SetTheme struct {
	Theme model.Theme
}

type SetGroupBy struct {
	GroupBy model.GroupBy
}

// FilterPatch shallow-merges into the current filters. Nil fields are kept.
type FilterPatch struct {
	Priority    *[]model.Priority
	Status      *[]model.Status
	Labels      *[]string
	DateRange   *model.DateRange
	SearchQuery *string
}

type SetFilters struct {
	Patch FilterPatch
}

type ClearFilters struct{}

type SelectItems struct {
	IDs []string
}

type BulkUpdateItems struct {
	IDs   []string
	Patch ItemPatch
	At    time.Time
}

type BulkDeleteItems struct {
	IDs []string
	At  time.Time
}

// ReorderItems moves the item at From to To within one list.
type ReorderItems struct {
	ListID string
	From   int
	To     int
	At     time.Time
}

func (ReplaceFields) Kind() Kind   { return KindReplaceFields }
func (CreateList) Kind() Kind      { return KindCreateList }
func (DeleteList) Kind() Kind      { return KindDeleteList }
func (UpdateList) Kind() Kind      { return KindUpdateList }
func (SetActiveList) Kind() Kind   { return KindSetActiveList }
func (CreateItem) Kind() Kind      { return KindCreateItem }
func (UpdateItem) Kind() Kind      { return KindUpdateItem }
func (DeleteItem) Kind() Kind      { return KindDeleteItem }
func (SetTheme) Kind() Kind        { return KindSetTheme }
func (SetGroupBy) Kind() Kind      { return KindSetGroupBy }
func (SetFilters) Kind() Kind      { return KindSetFilters }
func (ClearFilters) Kind() Kind    { return KindClearFilters }
func (SelectItems) Kind() Kind     { return KindSelectItems }
func (BulkUpdateItems) Kind() Kind { return KindBulkUpdateItems }
func (BulkDeleteItems) Kind() Kind { return KindBulkDeleteItems }
func (ReorderItems) Kind() Kind    { return KindReorderItems }
