package calculator

import (
	"fmt"
	"time"

	"github.com/mmynk/familyledger/internal/models"
)

// Window is a named time range relative to now.
type Window string

const (
	WindowToday       Window = "today"
	WindowThisWeek    Window = "this-week"
	WindowThisMonth   Window = "this-month"
	WindowLast3Months Window = "last-3-months"
	WindowAll         Window = "all"
)

// ParseWindow validates a window tag. The empty string means WindowAll.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return WindowAll, nil
	case WindowToday, WindowThisWeek, WindowThisMonth, WindowLast3Months, WindowAll:
		return w, nil
	default:
		return "", fmt.Errorf("unknown window %q", s)
	}
}

// Bounds returns the half-open range [start, end) covered by w at now. Every bounded
// window ends at the start of tomorrow, so future-dated expenses fall outside it.
// ok is false for WindowAll.
func (w Window) Bounds(now time.Time) (start, end time.Time, ok bool) {
	today := startOfDay(now)
	end = today.AddDate(0, 0, 1)

	switch w {
	case WindowToday:
		return today, end, true
	case WindowThisWeek:
		// Weeks start on Monday.
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), end, true
	case WindowThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), end, true
	case WindowLast3Months:
		return today.AddDate(0, -3, 0), end, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// FilterByWindow keeps the expenses dated inside w at now, preserving order.
func FilterByWindow(expenses []*models.Expense, w Window, now time.Time) []*models.Expense {
	start, end, ok := w.Bounds(now)
	if !ok {
		out := make([]*models.Expense, len(expenses))
		copy(out, expenses)
		return out
	}

	out := make([]*models.Expense, 0, len(expenses))
	for _, e := range expenses {
		d := e.Date.In(now.Location())
		if !d.Before(start) && d.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
