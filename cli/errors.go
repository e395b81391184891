package cli

import (
	"fmt"
	"strings"

	"taskboard/model"
)

// shortIDLen is how many id characters text output shows. Any unique
// prefix of at least minRefLen characters resolves.
const (
	shortIDLen = 8
	minRefLen  = 4
)

type notFoundError struct {
	kind string
	ref  string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.ref)
}

func errNotFound(kind, ref string) error {
	return notFoundError{kind: kind, ref: ref}
}

type ambiguousError struct {
	kind    string
	ref     string
	matches []string
}

func (e ambiguousError) Error() string {
	return fmt.Sprintf("%s %q is ambiguous: matches %s", e.kind, e.ref, strings.Join(e.matches, ", "))
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveList finds a list by exact id, case-insensitive name or unique id
// prefix. An empty ref means the active list.
func resolveList(s model.AppState, ref string) (model.List, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if l, ok := s.ActiveList(); ok {
			return l, nil
		}
		return model.List{}, errNotFound("list", "(active)")
	}
	if l, ok := s.FindList(ref); ok {
		return l, nil
	}

	var byName []model.List
	for _, l := range s.Lists {
		if strings.EqualFold(l.Name, ref) {
			byName = append(byName, l)
		}
	}
	if len(byName) == 1 {
		return byName[0], nil
	}
	if len(byName) > 1 {
		return model.List{}, ambiguousError{kind: "list", ref: ref, matches: listIDs(byName)}
	}

	var byPrefix []model.List
	if len(ref) >= minRefLen {
		for _, l := range s.Lists {
			if strings.HasPrefix(l.ID, ref) {
				byPrefix = append(byPrefix, l)
			}
		}
	}
	switch len(byPrefix) {
	case 0:
		return model.List{}, errNotFound("list", ref)
	case 1:
		return byPrefix[0], nil
	}
	return model.List{}, ambiguousError{kind: "list", ref: ref, matches: listIDs(byPrefix)}
}

// resolveItem finds an item in any list by exact id or unique id prefix.
func resolveItem(s model.AppState, ref string) (model.Item, error) {
	ref = strings.TrimSpace(ref)
	if it, ok := s.FindItem(ref); ok {
		return it, nil
	}
	if len(ref) < minRefLen {
		return model.Item{}, errNotFound("item", ref)
	}
	var matches []model.Item
	for _, it := range s.AllItems() {
		if strings.HasPrefix(it.ID, ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return model.Item{}, errNotFound("item", ref)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, it := range matches {
		ids[i] = it.ID
	}
	return model.Item{}, ambiguousError{kind: "item", ref: ref, matches: ids}
}

func resolveItems(s model.AppState, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		it, err := resolveItem(s, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func listIDs(lists []model.List) []string {
	ids := make([]string, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
	}
	return ids
}
