package state

import (
	"slices"
	"time"

	"taskboard/model"
)

// Reduce returns the state that results from applying a to s.
// s is never modified. A nil action returns s unchanged. Actions that
// reference missing lists or items are no-ops.
func Reduce(s model.AppState, a Action) model.AppState {
	if a == nil {
		return s
	}
	next := s.Clone()
	a.apply(&next)
	return next
}

// touch bumps a list's updatedAt. Every item-mutating transition goes
// through here.
func touch(l *model.List, at time.Time) {
	l.UpdatedAt = at
}

func (a ReplaceFields) apply(s *model.AppState) {
	if a.Lists != nil {
		lists := make([]model.List, len(*a.Lists))
		for i, l := range *a.Lists {
			lists[i] = l.Clone()
		}
		s.Lists = lists
	}
	if a.ActiveListID != nil {
		s.ActiveListID = *a.ActiveListID
	}
	if a.Theme != nil {
		s.Theme = *a.Theme
	}
	if a.GroupBy != nil {
		s.GroupBy = *a.GroupBy
	}
	if a.Filters != nil {
		s.Filters = a.Filters.Clone()
	}
	if a.SelectedItems != nil {
		s.SelectedItems = slices.Clone(*a.SelectedItems)
	}
}

func (a CreateList) apply(s *model.AppState) {
	s.Lists = append(s.Lists, a.List.Clone())
	s.ActiveListID = a.List.ID
}

func (a DeleteList) apply(s *model.AppState) {
	idx := slices.IndexFunc(s.Lists, func(l model.List) bool { return l.ID == a.ID })
	if idx < 0 {
		return
	}
	s.Lists = slices.Delete(s.Lists, idx, idx+1)
	if s.ActiveListID == a.ID {
		s.ActiveListID = ""
		if len(s.Lists) > 0 {
			s.ActiveListID = s.Lists[0].ID
		}
	}
}

func (a UpdateList) apply(s *model.AppState) {
	for i := range s.Lists {
		if s.Lists[i].ID != a.ID {
			continue
		}
		if a.Patch.Name != nil {
			s.Lists[i].Name = *a.Patch.Name
		}
		touch(&s.Lists[i], a.At)
	}
}

func (a SetActiveList) apply(s *model.AppState) {
	s.ActiveListID = a.ID
}

func (a CreateItem) apply(s *model.AppState) {
	for i := range s.Lists {
		if s.Lists[i].ID != a.Item.ListID {
			continue
		}
		s.Lists[i].Items = append(s.Lists[i].Items, a.Item.Clone())
		touch(&s.Lists[i], a.At)
	}
}

func (a UpdateItem) apply(s *model.AppState) {
	for i := range s.Lists {
		j := s.Lists[i].IndexOf(a.ID)
		if j < 0 {
			continue
		}
		a.Patch.applyTo(&s.Lists[i].Items[j], a.At)
		touch(&s.Lists[i], a.At)
	}
}

func (a DeleteItem) apply(s *model.AppState) {
	for i := range s.Lists {
		j := s.Lists[i].IndexOf(a.ID)
		if j < 0 {
			continue
		}
		s.Lists[i].Items = slices.Delete(s.Lists[i].Items, j, j+1)
		touch(&s.Lists[i], a.At)
	}
	s.SelectedItems = slices.DeleteFunc(s.SelectedItems, func(id string) bool { return id == a.ID })
}

func (a SetTheme) apply(s *model.AppState) {
	s.Theme = a.Theme
}

func (a SetGroupBy) apply(s *model.AppState) {
	s.GroupBy = a.GroupBy
}

func (a SetFilters) apply(s *model.AppState) {
	p := a.Patch
	if p.Priority != nil {
		s.Filters.Priority = slices.Clone(*p.Priority)
	}
	if p.Status != nil {
		s.Filters.Status = slices.Clone(*p.Status)
	}
	if p.Labels != nil {
		s.Filters.Labels = slices.Clone(*p.Labels)
	}
	if p.DateRange != nil {
		s.Filters.DateRange = model.DateRange{
			Start: model.CopyTime(p.DateRange.Start),
			End:   model.CopyTime(p.DateRange.End),
		}
	}
	if p.SearchQuery != nil {
		s.Filters.SearchQuery = *p.SearchQuery
	}
}

func (ClearFilters) apply(s *model.AppState) {
	s.Filters = model.DefaultFilters()
}

func (a SelectItems) apply(s *model.AppState) {
	s.SelectedItems = slices.Clone(a.IDs)
	if s.SelectedItems == nil {
		s.SelectedItems = []string{}
	}
}

func (a BulkUpdateItems) apply(s *model.AppState) {
	for i := range s.Lists {
		hit := false
		for j := range s.Lists[i].Items {
			if !slices.Contains(a.IDs, s.Lists[i].Items[j].ID) {
				continue
			}
			a.Patch.applyTo(&s.Lists[i].Items[j], a.At)
			hit = true
		}
		if hit {
			touch(&s.Lists[i], a.At)
		}
	}
	s.SelectedItems = []string{}
}

func (a BulkDeleteItems) apply(s *model.AppState) {
	for i := range s.Lists {
		before := len(s.Lists[i].Items)
		s.Lists[i].Items = slices.DeleteFunc(s.Lists[i].Items, func(it model.Item) bool {
			return slices.Contains(a.IDs, it.ID)
		})
		if len(s.Lists[i].Items) != before {
			touch(&s.Lists[i], a.At)
		}
	}
	s.SelectedItems = []string{}
}

func (a ReorderItems) apply(s *model.AppState) {
	for i := range s.Lists {
		if s.Lists[i].ID != a.ListID {
			continue
		}
		items := s.Lists[i].Items
		if a.From < 0 || a.From >= len(items) || a.To < 0 || a.To >= len(items) {
			return
		}
		moved := items[a.From]
		items = slices.Delete(items, a.From, a.From+1)
		s.Lists[i].Items = slices.Insert(items, a.To, moved)
		touch(&s.Lists[i], a.At)
	}
}

func (p ItemPatch) applyTo(it *model.Item, at time.Time) {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.ClearDueDate {
		it.DueDate = nil
	} else if p.DueDate != nil {
		it.DueDate = model.CopyTime(p.DueDate)
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.Labels != nil {
		it.Labels = slices.Clone(*p.Labels)
	}
	it.UpdatedAt = at
}
