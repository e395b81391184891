package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateTime = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ T](\d{2}:\d{2})(?::\d{2})?$`)
)

// ParseDate parses:
// - today / tomorrow (midnight local time)
// - YYYY-MM-DD (midnight local time)
// - YYYY-MM-DD HH:MM (local date+time)
// - RFC3339 / RFC3339Nano (timezone-aware)
//
// The result is UTC with millisecond precision.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	loc := now.Location()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch strings.ToLower(s) {
	case "today":
		return normalizeTime(day), nil
	case "tomorrow":
		return normalizeTime(day.AddDate(0, 0, 1)), nil
	}

	if reDateOnly.MatchString(s) {
		t, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return normalizeTime(t), nil
	}
	if m := reDateTime.FindStringSubmatch(s); m != nil {
		t, err := time.ParseInLocation("2006-01-02 15:04", m[1]+" "+m[2], loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return normalizeTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return normalizeTime(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected today, tomorrow, YYYY-MM-DD, YYYY-MM-DD HH:MM, or RFC3339)", s)
}

// ParseRangeEnd parses an upper bound. Date-only values extend to the last
// millisecond of that day so the day itself is included.
func ParseRangeEnd(s string, now time.Time) (time.Time, error) {
	t, err := ParseDate(s, now)
	if err != nil {
		return time.Time{}, err
	}
	v := strings.ToLower(strings.TrimSpace(s))
	if reDateOnly.MatchString(v) || v == "today" || v == "tomorrow" {
		t = normalizeTime(t.In(now.Location()).AddDate(0, 0, 1).Add(-time.Millisecond))
	}
	return t, nil
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
