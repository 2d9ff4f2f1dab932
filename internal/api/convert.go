package api

import (
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/reminder"
	"github.com/mmynk/familyledger/pkg/ledgerapi"
)

func toUser(u *models.User) ledgerapi.User {
	out := ledgerapi.User{
		ID:        u.ID,
		Name:      u.Name,
		Handle:    u.Handle,
		Email:     u.Email,
		Role:      string(u.Role),
		Currency:  u.Currency,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
	if u.InGroup() {
		groupID := u.GroupID
		out.GroupID = &groupID
	}
	return out
}

func toGroup(g *models.Group) ledgerapi.Group {
	return ledgerapi.Group{
		ID:         g.ID,
		Name:       g.Name,
		AdminID:    g.AdminID,
		InviteCode: g.InviteCode,
		Income:     g.Income,
		Budget:     g.Budget,
		CreatedAt:  g.CreatedAt,
	}
}

func toMembers(members []models.Member) []ledgerapi.Member {
	out := make([]ledgerapi.Member, len(members))
	for i, m := range members {
		out[i] = ledgerapi.Member{
			ID:     m.ID,
			Name:   m.Name,
			Email:  m.Email,
			Role:   string(m.Role),
			Avatar: m.Avatar,
		}
	}
	return out
}

func toExpense(e *models.Expense) ledgerapi.Expense {
	return ledgerapi.Expense{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  e.Category,
		Date:      ledgerapi.FormatDate(e.Date),
		UserID:    e.UserID,
		GroupID:   e.GroupID,
		AddedBy:   e.AddedBy,
		CreatedAt: e.CreatedAt,
	}
}

func toExpenses(expenses []*models.Expense) []ledgerapi.Expense {
	out := make([]ledgerapi.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toExpense(e)
	}
	return out
}

func toBill(b *models.Bill, status string) ledgerapi.Bill {
	return ledgerapi.Bill{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Amount:      b.Amount,
		DueDate:     ledgerapi.FormatDate(b.DueDate),
		IsPinned:    b.IsPinned,
		Status:      status,
		UserID:      b.UserID,
		GroupID:     b.GroupID,
		CreatedAt:   b.CreatedAt,
	}
}

func toBills(entries []reminder.Entry) []ledgerapi.Bill {
	out := make([]ledgerapi.Bill, len(entries))
	for i, e := range entries {
		out[i] = toBill(e.Bill, e.Status)
	}
	return out
}
