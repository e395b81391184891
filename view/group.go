package view

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"taskboard/model"
)

const (
	AllItemsKey = "All Items"
	NoLabelsKey = "No Labels"
)

// Group is one section of the grouped view. Key is the display title.
type Group struct {
	Key   string
	Items []model.Item
}

// GroupItems partitions items by groupBy. Groups appear in the order their
// key is first met while scanning items. Under GroupLabels an item is added
// to every one of its label groups, so the result is not a partition.
func GroupItems(items []model.Item, groupBy model.GroupBy, now time.Time) []Group {
	if groupBy == model.GroupNone || !groupBy.Valid() {
		return []Group{{Key: AllItemsKey, Items: append([]model.Item{}, items...)}}
	}

	var groups []Group
	index := map[string]int{}
	add := func(key string, it model.Item) {
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	for _, it := range items {
		switch groupBy {
		case model.GroupPriority:
			add(DisplayKey(string(it.Priority)), it)
		case model.GroupStatus:
			add(DisplayKey(string(it.Status)), it)
		case model.GroupDate:
			add(DisplayKey(string(Categorize(it.DueDate, now))), it)
		case model.GroupLabels:
			if len(it.Labels) == 0 {
				add(NoLabelsKey, it)
				continue
			}
			for _, l := range it.Labels {
				add(l, it)
			}
		}
	}
	return groups
}

// DisplayKey capitalizes the first letter and renders the first hyphen as a
// space: "in-progress" becomes "In progress".
func DisplayKey(raw string) string {
	if raw == "" {
		return raw
	}
	r, size := utf8.DecodeRuneInString(raw)
	return string(unicode.ToUpper(r)) + strings.Replace(raw[size:], "-", " ", 1)
}
