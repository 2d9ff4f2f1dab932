// Package ledgerapi defines the JSON wire types of the family ledger HTTP API.
// The server and pkg/client share them.
package ledgerapi

import (
	"fmt"
	"time"
)

// DateLayout is the short date form accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

// ParseDate accepts RFC 3339 timestamps or YYYY-MM-DD dates, the latter at local
// midnight. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// FormatDate renders t in RFC 3339.
func FormatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse acknowledges writes that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Handle   string `json:"handle,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Currency string `json:"currency,omitempty"`
}

// LoginRequest identifies the user by Login (email or handle), falling back to Email.
type LoginRequest struct {
	Login    string `json:"login,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

// User never carries the password hash. GroupID is null when the user is in no group.
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Handle    string  `json:"handle"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	GroupID   *string `json:"groupId"`
	Currency  string  `json:"currency"`
	Avatar    string  `json:"avatar,omitempty"`
	CreatedAt int64   `json:"createdAt"`
}

// AuthResponse is the user plus a freshly issued token.
type AuthResponse struct {
	User
	Token string `json:"token"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

type JoinGroupResponse struct {
	Message   string `json:"message"`
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
}

type SettingsRequest struct {
	Income *float64 `json:"income,omitempty"`
	Budget *float64 `json:"budget,omitempty"`
}

type Group struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AdminID    string  `json:"adminId"`
	InviteCode string  `json:"inviteCode"`
	Income     float64 `json:"income"`
	Budget     float64 `json:"budget"`
	CreatedAt  int64   `json:"createdAt"`
}

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type ExpenseRequest struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date,omitempty"`
}

type Expense struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Date      string  `json:"date"`
	UserID    string  `json:"userId"`
	GroupID   string  `json:"groupId"`
	AddedBy   string  `json:"addedBy"`
	CreatedAt int64   `json:"createdAt"`
}

type BillRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate"`
}

// Bill carries the reminder status derived at listing time.
type Bill struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate"`
	IsPinned    bool    `json:"isPinned"`
	Status      string  `json:"status,omitempty"`
	UserID      string  `json:"userId"`
	GroupID     string  `json:"groupId"`
	CreatedAt   int64   `json:"createdAt"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type MemberTotal struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type SeriesPoint struct {
	ExpenseID  string  `json:"expenseId"`
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Cumulative float64 `json:"cumulative"`
}

type Summary struct {
	Window      string          `json:"window"`
	Count       int             `json:"count"`
	Total       float64         `json:"total"`
	Income      float64         `json:"income"`
	Budget      float64         `json:"budget"`
	Remaining   float64         `json:"remaining"`
	BudgetUsage float64         `json:"budgetUsage"`
	Categories  []CategoryTotal `json:"categories"`
	Members     []MemberTotal   `json:"members"`
	Series      []SeriesPoint   `json:"series"`
}
