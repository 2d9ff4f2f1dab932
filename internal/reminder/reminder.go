// Package reminder derives the display status and ordering of bill reminders.
//
// Nothing here is stored: status and order are recomputed from "now" on every listing.
package reminder

import (
	"sort"
	"time"

	"github.com/mmynk/familyledger/internal/models"
)

const (
	StatusOverdue     = "Overdue"
	StatusDueToday    = "Due Today"
	StatusDueTomorrow = "Due Tomorrow"

	// dueDateLayout formats dates further out, e.g. "Due Oct 25".
	dueDateLayout = "Jan 2"
)

// Status returns the label for a bill due on due, as seen at now. Days are compared
// as calendar days in now's location.
func Status(now, due time.Time) string {
	today := startOfDay(now)
	dueDay := startOfDay(due.In(now.Location()))

	switch {
	case dueDay.Before(today):
		return StatusOverdue
	case dueDay.Equal(today):
		return StatusDueToday
	case dueDay.Equal(today.AddDate(0, 0, 1)):
		return StatusDueTomorrow
	default:
		return "Due " + dueDay.Format(dueDateLayout)
	}
}

// Entry is a bill with its derived status.
type Entry struct {
	Bill   *models.Bill
	Status string
}

// Sort orders bills for display in place: pinned before unpinned, then by ascending
// due date. Ties keep their incoming order.
func Sort(bills []*models.Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		a, b := bills[i], bills[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return a.DueDate.Before(b.DueDate)
	})
}

// Arrange returns a sorted copy of bills with each bill's status at now.
func Arrange(bills []*models.Bill, now time.Time) []Entry {
	sorted := make([]*models.Bill, len(bills))
	copy(sorted, bills)
	Sort(sorted)

	entries := make([]Entry, len(sorted))
	for i, b := range sorted {
		entries[i] = Entry{Bill: b, Status: Status(now, b.DueDate)}
	}
	return entries
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
