package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/model"
)

var (
	t0 = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func ptr[T any](v T) *T { return &v }

func item(id, listID, title string) model.Item {
	return model.NewItem(id, title, listID, t0, model.ItemOptions{})
}

// seed returns two lists: "a" with items a1,a2,a3 and "b" with b1.
func seed() model.AppState {
	s := model.NewState()
	a := model.NewList("a", "Work", t0)
	a.Items = []model.Item{item("a1", "a", "A"), item("a2", "a", "B"), item("a3", "a", "C")}
	b := model.NewList("b", "Home", t0)
	b.Items = []model.Item{item("b1", "b", "Dishes")}
	s.Lists = []model.List{a, b}
	s.ActiveListID = "a"
	return s
}

func titles(l model.List) []string {
	out := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		out = append(out, it.Title)
	}
	return out
}

func assertConsistent(t *testing.T, s model.AppState) {
	t.Helper()
	ids := map[string]bool{}
	for _, l := range s.Lists {
		require.False(t, ids[l.ID], "duplicate list id %s", l.ID)
		ids[l.ID] = true
		for _, it := range l.Items {
			require.Equal(t, l.ID, it.ListID, "item %s has wrong listId", it.ID)
		}
	}
	if s.ActiveListID != "" {
		require.True(t, ids[s.ActiveListID], "active list %s does not exist", s.ActiveListID)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := seed()
	before := s.Clone()

	_ = Reduce(s, UpdateItem{ID: "a1", Patch: ItemPatch{Title: ptr("changed")}, At: t1})
	_ = Reduce(s, ReorderItems{ListID: "a", From: 0, To: 2, At: t1})
	_ = Reduce(s, BulkDeleteItems{IDs: []string{"a1", "b1"}, At: t1})

	assert.Equal(t, before, s)
}

func TestReduceNilActionIsNoop(t *testing.T) {
	s := seed()
	assert.Equal(t, s, Reduce(s, nil))
}

func TestCreateListBecomesActive(t *testing.T) {
	s := Reduce(seed(), CreateList{List: model.NewList("c", "Errands", t1)})

	require.Len(t, s.Lists, 3)
	assert.Equal(t, "c", s.Lists[2].ID)
	assert.Equal(t, "c", s.ActiveListID)
	assertConsistent(t, s)
}

func TestDeleteListCascadesAndMovesActive(t *testing.T) {
	s := Reduce(seed(), DeleteList{ID: "a"})

	require.Len(t, s.Lists, 1)
	assert.Equal(t, "b", s.ActiveListID)
	for _, it := range s.AllItems() {
		assert.NotEqual(t, "a", it.ListID)
	}
	_, found := s.FindItem("a1")
	assert.False(t, found)
	assertConsistent(t, s)

	s = Reduce(s, DeleteList{ID: "b"})
	assert.Empty(t, s.Lists)
	assert.Equal(t, "", s.ActiveListID)
}

func TestDeleteInactiveListKeepsActive(t *testing.T) {
	s := Reduce(seed(), DeleteList{ID: "b"})
	assert.Equal(t, "a", s.ActiveListID)

	same := Reduce(s, DeleteList{ID: "missing"})
	assert.Equal(t, s, same)
}

func TestUpdateListRenamesAndBumps(t *testing.T) {
	s := Reduce(seed(), UpdateList{ID: "b", Patch: ListPatch{Name: ptr("House")}, At: t1})

	l, ok := s.FindList("b")
	require.True(t, ok)
	assert.Equal(t, "House", l.Name)
	assert.Equal(t, t1, l.UpdatedAt)
	assert.Equal(t, t0, l.CreatedAt)

	other, _ := s.FindList("a")
	assert.Equal(t, t0, other.UpdatedAt)
}

func TestCreateItemAppendsToOwningList(t *testing.T) {
	s := Reduce(seed(), CreateItem{Item: item("b2", "b", "Laundry"), At: t1})

	l, _ := s.FindList("b")
	assert.Equal(t, []string{"Dishes", "Laundry"}, titles(l))
	assert.Equal(t, t1, l.UpdatedAt)

	orphan := Reduce(s, CreateItem{Item: item("x1", "nope", "Lost"), At: t1})
	_, found := orphan.FindItem("x1")
	assert.False(t, found, "item for a missing list must not be stored")
	assertConsistent(t, orphan)
}

func TestUpdateItemMergesFields(t *testing.T) {
	due := t0.Add(72 * time.Hour)
	s := Reduce(seed(), UpdateItem{ID: "a2", At: t1, Patch: ItemPatch{
		Description: ptr("details"),
		DueDate:     &due,
		Priority:    ptr(model.PriorityHigh),
		Labels:      &[]string{"x"},
	}})

	it, ok := s.FindItem("a2")
	require.True(t, ok)
	assert.Equal(t, "B", it.Title)
	assert.Equal(t, "details", it.Description)
	require.NotNil(t, it.DueDate)
	assert.True(t, it.DueDate.Equal(due))
	assert.Equal(t, model.PriorityHigh, it.Priority)
	assert.Equal(t, model.StatusPending, it.Status)
	assert.Equal(t, []string{"x"}, it.Labels)
	assert.Equal(t, t1, it.UpdatedAt)

	l, _ := s.FindList("a")
	assert.Equal(t, t1, l.UpdatedAt)
	untouched, _ := s.FindList("b")
	assert.Equal(t, t0, untouched.UpdatedAt)

	cleared := Reduce(s, UpdateItem{ID: "a2", At: t1, Patch: ItemPatch{ClearDueDate: true, DueDate: &due}})
	it, _ = cleared.FindItem("a2")
	assert.Nil(t, it.DueDate)
}

func TestUpdateMissingItemIsNoop(t *testing.T) {
	s := seed()
	assert.Equal(t, s, Reduce(s, UpdateItem{ID: "ghost", Patch: ItemPatch{Title: ptr("x")}, At: t1}))
}

func TestDeleteItemDropsSelection(t *testing.T) {
	s := Reduce(seed(), SelectItems{IDs: []string{"a1", "a2"}})
	s = Reduce(s, DeleteItem{ID: "a1", At: t1})

	l, _ := s.FindList("a")
	assert.Equal(t, []string{"B", "C"}, titles(l))
	assert.Equal(t, t1, l.UpdatedAt)
	assert.Equal(t, []string{"a2"}, s.SelectedItems)
}

func TestFilters(t *testing.T) {
	s := Reduce(seed(), SetFilters{Patch: FilterPatch{
		Priority:    &[]model.Priority{model.PriorityHigh},
		SearchQuery: ptr("milk"),
	}})
	s = Reduce(s, SetFilters{Patch: FilterPatch{Labels: &[]string{"home"}}})

	assert.Equal(t, []model.Priority{model.PriorityHigh}, s.Filters.Priority)
	assert.Equal(t, "milk", s.Filters.SearchQuery)
	assert.Equal(t, []string{"home"}, s.Filters.Labels)

	once := Reduce(s, ClearFilters{})
	twice := Reduce(once, ClearFilters{})
	assert.Equal(t, model.DefaultFilters(), once.Filters)
	assert.Equal(t, once.Filters, twice.Filters)
}

func TestThemeAndGroupBy(t *testing.T) {
	s := Reduce(seed(), SetTheme{Theme: model.ThemeDark})
	s = Reduce(s, SetGroupBy{GroupBy: model.GroupLabels})
	assert.Equal(t, model.ThemeDark, s.Theme)
	assert.Equal(t, model.GroupLabels, s.GroupBy)
}

func TestBulkUpdateItems(t *testing.T) {
	s := Reduce(seed(), SelectItems{IDs: []string{"a1", "b1"}})
	s = Reduce(s, BulkUpdateItems{IDs: []string{"a1", "b1"}, Patch: ItemPatch{Status: ptr(model.StatusCompleted)}, At: t1})

	assert.Empty(t, s.SelectedItems)
	for _, id := range []string{"a1", "b1"} {
		it, _ := s.FindItem(id)
		assert.Equal(t, model.StatusCompleted, it.Status, id)
		assert.Equal(t, t1, it.UpdatedAt, id)
	}
	untouched, _ := s.FindItem("a2")
	assert.Equal(t, item("a2", "a", "B"), untouched)

	for _, l := range s.Lists {
		assert.Equal(t, t1, l.UpdatedAt, l.ID)
	}
}

func TestBulkUpdateOnlyBumpsAffectedLists(t *testing.T) {
	s := Reduce(seed(), BulkUpdateItems{IDs: []string{"a3"}, Patch: ItemPatch{Priority: ptr(model.PriorityLow)}, At: t1})
	b, _ := s.FindList("b")
	assert.Equal(t, t0, b.UpdatedAt)
}

func TestBulkDeleteItems(t *testing.T) {
	s := Reduce(seed(), SelectItems{IDs: []string{"a1"}})
	s = Reduce(s, BulkDeleteItems{IDs: []string{"a1", "a3"}, At: t1})

	a, _ := s.FindList("a")
	b, _ := s.FindList("b")
	assert.Equal(t, []string{"B"}, titles(a))
	assert.Equal(t, t1, a.UpdatedAt)
	assert.Equal(t, t0, b.UpdatedAt)
	assert.Empty(t, s.SelectedItems)
	assert.Equal(t, item("a2", "a", "B"), a.Items[0])
}

func TestReorderItemsIsArrayMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"B", "C", "A"}},
		{"last to first", 2, 0, []string{"C", "A", "B"}},
		{"middle down", 1, 2, []string{"A", "C", "B"}},
		{"same index", 1, 1, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Reduce(seed(), ReorderItems{ListID: "a", From: tt.from, To: tt.to, At: t1})
			l, _ := s.FindList("a")
			assert.Equal(t, tt.want, titles(l))
			assert.Equal(t, t1, l.UpdatedAt)
		})
	}
}

func TestReorderOutOfRangeIsNoop(t *testing.T) {
	s := seed()
	for _, a := range []ReorderItems{
		{ListID: "a", From: -1, To: 0, At: t1},
		{ListID: "a", From: 0, To: 3, At: t1},
		{ListID: "zzz", From: 0, To: 1, At: t1},
	} {
		assert.Equal(t, s, Reduce(s, a))
	}
}

func TestReplaceFieldsShallowMerge(t *testing.T) {
	s := seed()
	s.Theme = model.ThemeDark
	lists := []model.List{model.NewList("z", "Imported", t1)}

	next := Reduce(s, ReplaceFields{Lists: &lists, ActiveListID: ptr("z")})

	assert.Equal(t, lists, next.Lists)
	assert.Equal(t, "z", next.ActiveListID)
	assert.Equal(t, model.ThemeDark, next.Theme, "fields not named must survive")
	assert.Equal(t, s.Filters, next.Filters)

	lists[0].Name = "mutated after dispatch"
	assert.Equal(t, "Imported", next.Lists[0].Name)
}

func TestSetActiveListDoesNotValidate(t *testing.T) {
	s := Reduce(seed(), SetActiveList{ID: "b"})
	assert.Equal(t, "b", s.ActiveListID)
}

func TestEveryKindIsDistinct(t *testing.T) {
	actions := []Action{
		ReplaceFields{}, CreateList{}, DeleteList{}, UpdateList{}, SetActiveList{},
		CreateItem{}, UpdateItem{}, DeleteItem{}, SetTheme{}, SetGroupBy{},
		SetFilters{}, ClearFilters{}, SelectItems{}, BulkUpdateItems{},
		BulkDeleteItems{}, ReorderItems{},
	}
	seen := map[Kind]bool{}
	for _, a := range actions {
		require.False(t, seen[a.Kind()], "duplicate kind %s", a.Kind())
		seen[a.Kind()] = true
	}
}
