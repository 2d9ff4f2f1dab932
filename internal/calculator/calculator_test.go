package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/mmynk/familyledger/internal/models"
)

func expense(title, category, addedBy string, amount float64, date time.Time) *models.Expense {
	return &models.Expense{ID: title, Title: title, Category: category, AddedBy: addedBy, Amount: amount, Date: date}
}

func TestCategoryTotals(t *testing.T) {
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	expenses := []*models.Expense{
		expense("lunch", "Food", "Alice", 10, day),
		expense("snack", "Food", "Bob", 5, day),
		expense("bus", "Transport", "Alice", 20, day),
	}

	got := CategoryTotals(expenses)

	want := []CategoryTotal{{"Food", 15}, {"Transport", 20}}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategoryTotals_FirstSeenOrder(t *testing.T) {
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	expenses := []*models.Expense{
		expense("a", "Zoo", "A", 1, day),
		expense("b", "Apple", "A", 1, day),
		expense("c", "Zoo", "A", 1, day),
	}

	got := CategoryTotals(expenses)
	if got[0].Category != "Zoo" || got[1].Category != "Apple" {
		t.Errorf("order = [%s %s], want [Zoo Apple]", got[0].Category, got[1].Category)
	}
}

func TestMemberTotals(t *testing.T) {
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	expenses := []*models.Expense{
		expense("a", "Food", "Alice", 0.1, day),
		expense("b", "Food", "Bob", 7, day),
		expense("c", "Food", "Alice", 0.2, day),
	}

	got := MemberTotals(expenses)
	if len(got) != 2 {
		t.Fatalf("got %d members, want 2", len(got))
	}
	if got[0].Name != "Alice" || got[0].Amount != 0.3 {
		t.Errorf("members[0] = %+v, want {Alice 0.3}", got[0])
	}
	if got[1].Name != "Bob" || got[1].Amount != 7 {
		t.Errorf("members[1] = %+v, want {Bob 7}", got[1])
	}
}

func TestFilterByWindow(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC)

	yesterday := expense("yesterday", "Food", "A", 1, now.AddDate(0, 0, -1))
	current := expense("now", "Food", "A", 1, now)
	monday := expense("monday", "Food", "A", 1, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	lastSunday := expense("sunday", "Food", "A", 1, time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC))
	monthStart := expense("month-start", "Food", "A", 1, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	lastMonth := expense("last-month", "Food", "A", 1, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC))
	twoMonths := expense("two-months", "Food", "A", 1, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	longAgo := expense("long-ago", "Food", "A", 1, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	tomorrow := expense("tomorrow", "Food", "A", 1, now.AddDate(0, 0, 1))

	all := []*models.Expense{yesterday, current, monday, lastSunday, monthStart, lastMonth, twoMonths, longAgo, tomorrow}

	tests := []struct {
		window Window
		want   []string
	}{
		{WindowToday, []string{"now"}},
		{WindowThisWeek, []string{"yesterday", "now", "monday"}},
		{WindowThisMonth, []string{"yesterday", "now", "monday", "sunday", "month-start"}},
		{WindowLast3Months, []string{"yesterday", "now", "monday", "sunday", "month-start", "last-month", "two-months"}},
		{WindowAll, []string{"yesterday", "now", "monday", "sunday", "month-start", "last-month", "two-months", "long-ago", "tomorrow"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			got := FilterByWindow(all, tt.window, now)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d expenses, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.ID != tt.want[i] {
					t.Errorf("expenses[%d] = %s, want %s", i, e.ID, tt.want[i])
				}
			}
		})
	}
}

func TestThisWeekStartsOnMonday(t *testing.T) {
	// A Sunday: the week began six days earlier.
	sunday := time.Date(2026, 10, 25, 10, 0, 0, 0, time.UTC)
	start, _, ok := WindowThisWeek.Bounds(sunday)
	if !ok {
		t.Fatal("expected bounded window")
	}
	want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestParseWindow(t *testing.T) {
	if w, err := ParseWindow(""); err != nil || w != WindowAll {
		t.Errorf("ParseWindow(\"\") = %q, %v", w, err)
	}
	if w, err := ParseWindow("this-month"); err != nil || w != WindowThisMonth {
		t.Errorf("ParseWindow(this-month) = %q, %v", w, err)
	}
	if _, err := ParseWindow("fortnight"); err == nil {
		t.Error("expected error for unknown window")
	}
}

func TestCumulativeSeries(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }
	// Listing order is newest first, as the ledger returns it.
	expenses := []*models.Expense{
		expense("third", "Food", "A", 5, day(3)),
		expense("second", "Food", "A", 20, day(2)),
		expense("first", "Food", "A", 10, day(1)),
	}

	got := CumulativeSeries(expenses)

	wantTitles := []string{"first", "second", "third"}
	wantCumulative := []float64{10, 30, 35}
	for i, p := range got {
		if p.Title != wantTitles[i] {
			t.Errorf("point %d title = %s, want %s", i, p.Title, wantTitles[i])
		}
		if math.Abs(p.Cumulative-wantCumulative[i]) > 1e-9 {
			t.Errorf("point %d cumulative = %v, want %v", i, p.Cumulative, wantCumulative[i])
		}
	}
	if expenses[0].Title != "third" {
		t.Error("CumulativeSeries reordered its input")
	}
}

func TestBudgetUsage(t *testing.T) {
	tests := []struct {
		name          string
		total, budget float64
		want          float64
	}{
		{"no budget", 100, 0, 0},
		{"half used", 50, 100, 50},
		{"over budget is not clamped", 150, 100, 150},
		{"nothing spent", 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BudgetUsage(tt.total, tt.budget); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BudgetUsage(%v, %v) = %v, want %v", tt.total, tt.budget, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC)
	expenses := []*models.Expense{
		expense("today", "Food", "Alice", 42, now),
		expense("old", "Rent", "Bob", 1000, now.AddDate(-1, 0, 0)),
	}
	group := &models.Group{Income: 3000, Budget: 84}

	s := Summarize(expenses, group, WindowThisMonth, now)

	if s.Count != 1 || s.Total != 42 {
		t.Errorf("Count/Total = %d/%v, want 1/42", s.Count, s.Total)
	}
	if s.BudgetUsage != 50 {
		t.Errorf("BudgetUsage = %v, want 50", s.BudgetUsage)
	}
	if s.Remaining != 2958 {
		t.Errorf("Remaining = %v, want 2958", s.Remaining)
	}
	if len(s.Categories) != 1 || s.Categories[0].Category != "Food" {
		t.Errorf("Categories = %+v", s.Categories)
	}

	noGroup := Summarize(nil, nil, WindowAll, now)
	if noGroup.Total != 0 || noGroup.BudgetUsage != 0 {
		t.Errorf("empty summary = %+v", noGroup)
	}
}
