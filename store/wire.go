package store

import (
	"encoding/json"
	"fmt"
	"time"

	"taskboard/model"
)

// TimeLayout is the persisted timestamp form: UTC with milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// stamp encodes a time as TimeLayout and decodes any RFC 3339 value.
type stamp time.Time

func (s stamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(s).UTC().Format(TimeLayout))
}

func (s *stamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*s = stamp(t.UTC())
	return nil
}

func stampPtr(t *time.Time) *stamp {
	if t == nil {
		return nil
	}
	s := stamp(*t)
	return &s
}

func timePtr(s *stamp) *time.Time {
	if s == nil {
		return nil
	}
	t := time.Time(*s)
	return &t
}

type wireItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *stamp         `json:"dueDate"`
	Priority    model.Priority `json:"priority"`
	Status      model.Status   `json:"status"`
	Labels      []string       `json:"labels"`
	CreatedAt   stamp          `json:"createdAt"`
	UpdatedAt   stamp          `json:"updatedAt"`
	ListID      string         `json:"listId"`
}

type wireList struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt stamp      `json:"createdAt"`
	UpdatedAt stamp      `json:"updatedAt"`
	Items     []wireItem `json:"items"`
}

type wireRange struct {
	Start *stamp `json:"start"`
	End   *stamp `json:"end"`
}

type wireFilters struct {
	Priority    []model.Priority `json:"priority"`
	Status      []model.Status   `json:"status"`
	Labels      []string         `json:"labels"`
	DateRange   wireRange        `json:"dateRange"`
	SearchQuery string           `json:"searchQuery"`
}

type wireHistoryEntry struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp stamp           `json:"timestamp"`
}

type wireExport struct {
	Lists      []wireList `json:"lists"`
	ExportedAt stamp      `json:"exportedAt"`
	Version    string     `json:"version"`
}

func toWireLists(lists []model.List) []wireList {
	out := make([]wireList, 0, len(lists))
	for _, l := range lists {
		wl := wireList{
			ID:        l.ID,
			Name:      l.Name,
			CreatedAt: stamp(l.CreatedAt),
			UpdatedAt: stamp(l.UpdatedAt),
			Items:     make([]wireItem, 0, len(l.Items)),
		}
		for _, it := range l.Items {
			labels := it.Labels
			if labels == nil {
				labels = []string{}
			}
			wl.Items = append(wl.Items, wireItem{
				ID:          it.ID,
				Title:       it.Title,
				Description: it.Description,
				DueDate:     stampPtr(it.DueDate),
				Priority:    it.Priority,
				Status:      it.Status,
				Labels:      labels,
				CreatedAt:   stamp(it.CreatedAt),
				UpdatedAt:   stamp(it.UpdatedAt),
				ListID:      it.ListID,
			})
		}
		out = append(out, wl)
	}
	return out
}

func fromWireLists(wls []wireList) []model.List {
	out := make([]model.List, 0, len(wls))
	for _, wl := range wls {
		l := model.List{
			ID:        wl.ID,
			Name:      wl.Name,
			CreatedAt: time.Time(wl.CreatedAt),
			UpdatedAt: time.Time(wl.UpdatedAt),
			Items:     make([]model.Item, 0, len(wl.Items)),
		}
		for _, wi := range wl.Items {
			labels := wi.Labels
			if labels == nil {
				labels = []string{}
			}
			l.Items = append(l.Items, model.Item{
				ID:          wi.ID,
				Title:       wi.Title,
				Description: wi.Description,
				DueDate:     timePtr(wi.DueDate),
				Priority:    wi.Priority,
				Status:      wi.Status,
				Labels:      labels,
				CreatedAt:   time.Time(wi.CreatedAt),
				UpdatedAt:   time.Time(wi.UpdatedAt),
				ListID:      wi.ListID,
			})
		}
		out = append(out, l)
	}
	return out
}

func toWireFilters(f model.FilterOptions) wireFilters {
	f = f.Clone()
	return wireFilters{
		Priority:    nonNil(f.Priority),
		Status:      nonNil(f.Status),
		Labels:      nonNil(f.Labels),
		DateRange:   wireRange{Start: stampPtr(f.DateRange.Start), End: stampPtr(f.DateRange.End)},
		SearchQuery: f.SearchQuery,
	}
}

func fromWireFilters(wf wireFilters) model.FilterOptions {
	return model.FilterOptions{
		Priority:    nonNil(wf.Priority),
		Status:      nonNil(wf.Status),
		Labels:      nonNil(wf.Labels),
		DateRange:   model.DateRange{Start: timePtr(wf.DateRange.Start), End: timePtr(wf.DateRange.End)},
		SearchQuery: wf.SearchQuery,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
