package view

import (
	"cmp"
	"math"
	"slices"

	"taskboard/model"
)

// SortByPriority returns a copy ordered high to low. Ties keep their order.
func SortByPriority(items []model.Item) []model.Item {
	return sorted(items, func(a, b model.Item) int { return cmp.Compare(b.Priority.Rank(), a.Priority.Rank()) })
}

// SortByStatus returns a copy ordered pending, in-progress, completed.
func SortByStatus(items []model.Item) []model.Item {
	return sorted(items, func(a, b model.Item) int { return cmp.Compare(b.Status.Rank(), a.Status.Rank()) })
}

// SortByDueDate returns a copy ordered by due date; undated items go last.
func SortByDueDate(items []model.Item) []model.Item {
	return sorted(items, func(a, b model.Item) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	})
}

// SortByCreated returns a copy ordered newest first.
func SortByCreated(items []model.Item) []model.Item {
	return sorted(items, func(a, b model.Item) int { return b.CreatedAt.Compare(a.CreatedAt) })
}

func sorted(items []model.Item, fn func(a, b model.Item) int) []model.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, fn)
	return out
}

// UniqueLabels returns every label used by items, sorted.
func UniqueLabels(items []model.Item) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, it := range items {
		for _, l := range it.Labels {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	slices.Sort(out)
	return out
}

// CompletionPercentage is the rounded share of completed items, 0 for none.
func CompletionPercentage(items []model.Item) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, it := range items {
		if it.Status == model.StatusCompleted {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(items))))
}
