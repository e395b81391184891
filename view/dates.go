package view

import (
	"fmt"
	"strings"
	"time"

	"taskboard/model"
)

// DateCategory is the due-date bucket used by date grouping.
type DateCategory string

const (
	CategoryOverdue  DateCategory = "overdue"
	CategoryToday    DateCategory = "today"
	CategoryTomorrow DateCategory = "tomorrow"
	CategoryThisWeek DateCategory = "this-week"
	CategoryLater    DateCategory = "later"
	CategoryNoDate   DateCategory = "no-date"
)

// Categorize buckets due relative to now, using now's calendar. Overdue
// wins over every other bucket. Weeks start on Sunday.
func Categorize(due *time.Time, now time.Time) DateCategory {
	if due == nil {
		return CategoryNoDate
	}
	d := *due
	switch {
	case IsOverdue(due, now):
		return CategoryOverdue
	case sameDay(d, now):
		return CategoryToday
	case sameDay(d, startOfDay(now).AddDate(0, 0, 1)):
		return CategoryTomorrow
	case sameWeek(d, now):
		return CategoryThisWeek
	}
	return CategoryLater
}

// IsOverdue reports whether due has passed and is not today.
func IsOverdue(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	return due.Before(now) && !sameDay(*due, now)
}

// IsDueSoon reports whether due falls within the next three days.
func IsDueSoon(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	days := daysBetween(now, *due)
	return days >= 0 && days <= 3
}

// RelativeDate renders due the way list rows show it: Today, Tomorrow, a
// weekday for the current week, "In N days"/"N days ago" within a week,
// otherwise the calendar date.
func RelativeDate(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	d := due.In(now.Location())
	switch {
	case sameDay(d, now):
		return "Today"
	case sameDay(d, startOfDay(now).AddDate(0, 0, 1)):
		return "Tomorrow"
	case sameWeek(d, now):
		return d.Weekday().String()
	}
	days := daysBetween(now, d)
	if days > 0 && days <= 7 {
		return fmt.Sprintf("In %d days", days)
	}
	if days < 0 && days >= -7 {
		return fmt.Sprintf("%d days ago", -days)
	}
	return FormatDate(&d)
}

// FormatDate renders a date as "Jan 2, 2006".
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders a timestamp as "Jan 2, 2006 3:04 PM".
func FormatDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// NamedRange returns a day-aligned range for one of today, tomorrow,
// this-week, next-week or this-month. End is the last millisecond of the
// final day.
func NamedRange(name string, now time.Time) (model.DateRange, error) {
	day := startOfDay(now)
	var start, end time.Time
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "today":
		start, end = day, day
	case "tomorrow":
		start = day.AddDate(0, 0, 1)
		end = start
	case "this-week":
		start = day.AddDate(0, 0, -int(day.Weekday()))
		end = start.AddDate(0, 0, 6)
	case "next-week":
		start = day.AddDate(0, 0, 7-int(day.Weekday()))
		end = start.AddDate(0, 0, 6)
	case "this-month":
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(0, 1, -1)
	default:
		return model.DateRange{}, fmt.Errorf("unknown date range %q (want today|tomorrow|this-week|next-week|this-month)", name)
	}
	end = endOfDay(end)
	return model.DateRange{Start: &start, End: &end}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// sameDay compares calendar days in b's location.
func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameWeek(a, b time.Time) bool {
	a = a.In(b.Location())
	return startOfWeek(a).Equal(startOfWeek(b))
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// daysBetween counts whole 24h periods from a to b, truncated toward zero.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
