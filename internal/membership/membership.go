// Package membership derives a user's current group and role and answers the
// authorization questions every other component asks.
package membership

import "github.com/mmynk/familyledger/internal/models"

// Membership is the derived view of a user's place in a group.
type Membership struct {
	UserID  string
	GroupID string
	Role    models.Role
}

// Resolve derives the membership from the user record. A user outside any group is
// always admin of themselves, whatever the stored role says.
func Resolve(u *models.User) Membership {
	m := Membership{UserID: u.ID, GroupID: u.GroupID, Role: u.Role}
	if m.GroupID == "" || m.Role == "" {
		m.Role = models.RoleAdmin
	}
	return m
}

// InGroup reports whether the user belongs to a group.
func (m Membership) InGroup() bool {
	return m.GroupID != ""
}

// IsAdmin reports whether the user is admin of their current context.
func (m Membership) IsAdmin() bool {
	return m.Role == models.RoleAdmin
}

// CanUpdateSettings reports whether the user may change their group's income and budget.
func (m Membership) CanUpdateSettings() bool {
	return m.InGroup() && m.IsAdmin()
}

// CanDeleteExpense reports whether the user may delete e. Owners always can; admins can
// delete any expense of the group they administer.
func (m Membership) CanDeleteExpense(e *models.Expense) bool {
	if e.UserID == m.UserID {
		return true
	}
	return m.IsAdmin() && m.InGroup() && e.GroupID == m.GroupID
}

// CanAccessGroup reports whether records bound to groupID are visible to the user.
func (m Membership) CanAccessGroup(groupID string) bool {
	return m.InGroup() && m.GroupID == groupID
}
