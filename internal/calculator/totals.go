// Package calculator computes derived analytics over a group's ledger.
//
// Every function is pure: it takes expenses in memory and returns new values without
// touching storage. Sums are accumulated with decimal arithmetic so that totals like
// 0.1 + 0.2 come out as 0.3.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familyledger/internal/models"
)

// CategoryTotal is the summed amount for one category.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// MemberTotal is the summed amount contributed under one display name.
type MemberTotal struct {
	Name   string
	Amount float64
}

// SeriesPoint is one step of the cumulative spending series.
type SeriesPoint struct {
	ExpenseID  string
	Title      string
	Date       string // YYYY-MM-DD
	Amount     float64
	Cumulative float64
}

// Total sums the amounts of all expenses.
func Total(expenses []*models.Expense) float64 {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(decimal.NewFromFloat(e.Amount))
	}
	return sum.InexactFloat64()
}

// CategoryTotals sums amounts per category, ordered by the first time each category
// appears in expenses.
func CategoryTotals(expenses []*models.Expense) []CategoryTotal {
	keys, sums := groupSums(expenses, func(e *models.Expense) string { return e.Category })

	totals := make([]CategoryTotal, len(keys))
	for i, k := range keys {
		totals[i] = CategoryTotal{Category: k, Amount: sums[k].InexactFloat64()}
	}
	return totals
}

// MemberTotals sums amounts per cached contributor name (AddedBy), ordered by first
// appearance. Renamed contributors show up under the name they had when adding.
func MemberTotals(expenses []*models.Expense) []MemberTotal {
	keys, sums := groupSums(expenses, func(e *models.Expense) string { return e.AddedBy })

	totals := make([]MemberTotal, len(keys))
	for i, k := range keys {
		totals[i] = MemberTotal{Name: k, Amount: sums[k].InexactFloat64()}
	}
	return totals
}

// groupSums accumulates amounts by key and remembers first-seen key order.
func groupSums(expenses []*models.Expense, key func(*models.Expense) string) ([]string, map[string]decimal.Decimal) {
	var order []string
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		k := key(e)
		current, seen := sums[k]
		if !seen {
			order = append(order, k)
		}
		sums[k] = current.Add(decimal.NewFromFloat(e.Amount))
	}
	return order, sums
}

// CumulativeSeries sorts expenses by ascending date and returns the running total
// after each one. The input slice is not modified.
func CumulativeSeries(expenses []*models.Expense) []SeriesPoint {
	sorted := make([]*models.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]SeriesPoint, len(sorted))
	running := decimal.Zero
	for i, e := range sorted {
		running = running.Add(decimal.NewFromFloat(e.Amount))
		points[i] = SeriesPoint{
			ExpenseID:  e.ID,
			Title:      e.Title,
			Date:       e.Date.Format("2006-01-02"),
			Amount:     e.Amount,
			Cumulative: running.InexactFloat64(),
		}
	}
	return points
}

// BudgetUsage returns total as a percentage of budget, or 0 when no budget is set.
// The value is not clamped: 150 means 50% over budget.
func BudgetUsage(total, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return decimal.NewFromFloat(total).
		Div(decimal.NewFromFloat(budget)).
		Mul(decimal.NewFromInt(100)).
		InexactFloat64()
}
