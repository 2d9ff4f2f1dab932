package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/pkg/ledgerapi"
)

// Summary bundles every analytic for one window of a group's ledger.
type Summary struct {
	Window      Window
	Count       int
	Total       float64
	Income      float64
	Budget      float64
	Remaining   float64 // Income - Total
	BudgetUsage float64
	Categories  []CategoryTotal
	Members     []MemberTotal
	Series      []SeriesPoint
}

// Summarize filters expenses to w and computes all analytics on the filtered set.
// group may be nil for a user without a group.
func Summarize(expenses []*models.Expense, group *models.Group, w Window, now time.Time) Summary {
	filtered := FilterByWindow(expenses, w, now)
	total := Total(filtered)

	s := Summary{
		Window:     w,
		Count:      len(filtered),
		Total:      total,
		Categories: CategoryTotals(filtered),
		Members:    MemberTotals(filtered),
		Series:     CumulativeSeries(filtered),
	}
	if group != nil {
		s.Income = group.Income
		s.Budget = group.Budget
		s.BudgetUsage = BudgetUsage(total, group.Budget)
	}
	s.Remaining = decimal.NewFromFloat(s.Income).Sub(decimal.NewFromFloat(total)).InexactFloat64()
	return s
}

// API converts the summary to its wire form.
func (s *Summary) API() ledgerapi.Summary {
	out := ledgerapi.Summary{
		Window:      string(s.Window),
		Count:       s.Count,
		Total:       s.Total,
		Income:      s.Income,
		Budget:      s.Budget,
		Remaining:   s.Remaining,
		BudgetUsage: s.BudgetUsage,
		Categories:  make([]ledgerapi.CategoryTotal, len(s.Categories)),
		Members:     make([]ledgerapi.MemberTotal, len(s.Members)),
		Series:      make([]ledgerapi.SeriesPoint, len(s.Series)),
	}
	for i, c := range s.Categories {
		out.Categories[i] = ledgerapi.CategoryTotal{Category: c.Category, Amount: c.Amount}
	}
	for i, m := range s.Members {
		out.Members[i] = ledgerapi.MemberTotal{Name: m.Name, Amount: m.Amount}
	}
	for i, p := range s.Series {
		out.Series[i] = ledgerapi.SeriesPoint{
			ExpenseID:  p.ExpenseID,
			Title:      p.Title,
			Date:       p.Date,
			Amount:     p.Amount,
			Cumulative: p.Cumulative,
		}
	}
	return out
}
