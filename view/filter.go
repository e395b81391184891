// Package view derives what is displayed from the application state.
//
// Everything here is a pure function of its inputs: items are filtered in a
// fixed order (search, priority, status, labels, date range) and the result
// is grouped by the active GroupBy.
package view

import (
	"slices"
	"strings"

	"taskboard/model"
)

// Apply runs every filter stage in order. Stages whose criterion is empty
// pass items through untouched.
func Apply(items []model.Item, f model.FilterOptions) []model.Item {
	out := BySearch(items, f.SearchQuery)
	out = ByPriority(out, f.Priority)
	out = ByStatus(out, f.Status)
	out = ByLabels(out, f.Labels)
	out = ByDateRange(out, f.DateRange)
	return out
}

// BySearch keeps items whose title, description or any label contains query,
// ignoring case. A blank query keeps everything.
func BySearch(items []model.Item, query string) []model.Item {
	if strings.TrimSpace(query) == "" {
		return items
	}
	q := strings.ToLower(query)
	return keep(items, func(it model.Item) bool {
		if strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(strings.ToLower(it.Description), q) {
			return true
		}
		return slices.ContainsFunc(it.Labels, func(l string) bool {
			return strings.Contains(strings.ToLower(l), q)
		})
	})
}

func ByPriority(items []model.Item, priorities []model.Priority) []model.Item {
	if len(priorities) == 0 {
		return items
	}
	return keep(items, func(it model.Item) bool { return slices.Contains(priorities, it.Priority) })
}

func ByStatus(items []model.Item, statuses []model.Status) []model.Item {
	if len(statuses) == 0 {
		return items
	}
	return keep(items, func(it model.Item) bool { return slices.Contains(statuses, it.Status) })
}

// ByLabels keeps items carrying at least one of labels.
func ByLabels(items []model.Item, labels []string) []model.Item {
	if len(labels) == 0 {
		return items
	}
	return keep(items, func(it model.Item) bool { return slices.ContainsFunc(labels, it.HasLabel) })
}

// ByDateRange keeps items due within [Start, End]. Bounds are compared as
// exact instants; End is not widened to the end of its day. Items without a
// due date never match once either bound is set.
func ByDateRange(items []model.Item, r model.DateRange) []model.Item {
	if !r.IsSet() {
		return items
	}
	return keep(items, func(it model.Item) bool {
		if it.DueDate == nil {
			return false
		}
		if r.Start != nil && it.DueDate.Before(*r.Start) {
			return false
		}
		if r.End != nil && it.DueDate.After(*r.End) {
			return false
		}
		return true
	})
}

func keep(items []model.Item, pred func(model.Item) bool) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
