package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/events"
	"github.com/mmynk/familyledger/internal/membership"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

const (
	inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxInviteAttempts bounds the generate-and-check loop in CreateGroup.
	maxInviteAttempts = 10
)

// ErrInviteCodesExhausted is returned when every attempt drew a code already in use.
var ErrInviteCodesExhausted = errors.New("could not allocate a unique invite code")

// GroupService manages group lifecycle and membership.
type GroupService struct {
	store     storage.Store
	publisher events.Publisher

	// newInviteCode draws a candidate code. Replaced in tests to force collisions.
	newInviteCode func() (string, error)
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, publisher events.Publisher) *GroupService {
	return &GroupService{
		store:         store,
		publisher:     publisher,
		newInviteCode: generateInviteCode,
	}
}

// generateInviteCode draws InviteCodeLength characters from A-Z0-9.
func generateInviteCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(inviteAlphabet)))
	code := make([]byte, models.InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to draw invite code: %w", err)
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeInviteCode trims and upper-cases a user-entered invite code.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateGroup creates a group with a fresh invite code and makes the actor its admin.
// If the actor was in another group they silently leave it.
func (s *GroupService) CreateGroup(ctx context.Context, actor *models.User, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	slog.Info("CreateGroup request received", "user_id", actor.ID, "name", name)

	if name == "" {
		return nil, apperr.Validation("group name is required")
	}

	for attempt := 1; attempt <= maxInviteAttempts; attempt++ {
		code, err := s.newInviteCode()
		if err != nil {
			return nil, apperr.StoreUnavailable(err)
		}

		exists, err := s.store.InviteCodeExists(ctx, code)
		if err != nil {
			slog.Error("CreateGroup failed", "error", err)
			return nil, storeError(err, "group not found")
		}
		if exists {
			slog.Debug("Invite code collision", "attempt", attempt)
			continue
		}

		group := &models.Group{
			ID:         uuid.New().String(),
			Name:       name,
			AdminID:    actor.ID,
			InviteCode: code,
			CreatedAt:  time.Now().Unix(),
		}

		// The unique index is the final arbiter between the check above and the insert.
		err = s.store.CreateGroupWithAdmin(ctx, group)
		if errors.Is(err, storage.ErrConflict) {
			slog.Debug("Invite code collision on insert", "attempt", attempt)
			continue
		}
		if err != nil {
			slog.Error("CreateGroup failed", "error", err)
			return nil, storeError(err, "user not found")
		}

		slog.Info("Group created", "group_id", group.ID, "admin_id", actor.ID)
		publish(ctx, s.publisher, events.New(events.GroupCreated, group.ID, actor.ID, group.ID))
		return group, nil
	}

	slog.Error("CreateGroup failed", "error", ErrInviteCodesExhausted)
	return nil, apperr.StoreUnavailable(ErrInviteCodesExhausted)
}

// JoinGroup moves the actor into the group owning code, as a member.
func (s *GroupService) JoinGroup(ctx context.Context, actor *models.User, code string) (*models.Group, error) {
	code = NormalizeInviteCode(code)
	slog.Info("JoinGroup request received", "user_id", actor.ID, "code", code)

	if code == "" {
		return nil, apperr.Validation("invite code is required")
	}

	group, err := s.store.GetGroupByInviteCode(ctx, code)
	if err != nil {
		slog.Warn("JoinGroup failed", "code", code, "error", err)
		return nil, storeError(err, "invalid invite code")
	}

	if err := s.store.SetMembership(ctx, actor.ID, group.ID, models.RoleMember); err != nil {
		slog.Error("JoinGroup failed", "error", err)
		return nil, storeError(err, "user not found")
	}

	slog.Info("Group joined", "group_id", group.ID, "user_id", actor.ID, "previous_group_id", actor.GroupID)
	publish(ctx, s.publisher, events.New(events.GroupJoined, group.ID, actor.ID, actor.ID))
	return group, nil
}

// LeaveGroup clears the actor's membership. The actor becomes admin of themselves and
// the group keeps its admin id even if the admin is the one leaving.
func (s *GroupService) LeaveGroup(ctx context.Context, actor *models.User) error {
	slog.Info("LeaveGroup request received", "user_id", actor.ID, "group_id", actor.GroupID)

	if err := s.store.SetMembership(ctx, actor.ID, "", models.RoleAdmin); err != nil {
		slog.Error("LeaveGroup failed", "error", err)
		return storeError(err, "user not found")
	}

	if actor.InGroup() {
		publish(ctx, s.publisher, events.New(events.GroupLeft, actor.GroupID, actor.ID, actor.ID))
	}
	slog.Info("Group left", "user_id", actor.ID)
	return nil
}

// UpdateSettings changes the income and/or budget of the actor's group. Only the
// group's admin may do this.
func (s *GroupService) UpdateSettings(ctx context.Context, actor *models.User, update models.SettingsUpdate) (*models.Group, error) {
	m := membership.Resolve(actor)
	slog.Info("UpdateSettings request received", "user_id", actor.ID, "group_id", m.GroupID)

	if !m.InGroup() {
		return nil, apperr.NotFound("you are not in a group")
	}
	if !m.CanUpdateSettings() {
		return nil, apperr.Authorization("only the group admin can change settings")
	}
	if update.Income != nil && *update.Income < 0 {
		return nil, apperr.Validation("income must not be negative")
	}
	if update.Budget != nil && *update.Budget < 0 {
		return nil, apperr.Validation("budget must not be negative")
	}

	group, err := s.store.UpdateSettings(ctx, m.GroupID, update)
	if err != nil {
		slog.Error("UpdateSettings failed", "group_id", m.GroupID, "error", err)
		return nil, storeError(err, "group not found")
	}

	slog.Info("Group settings updated", "group_id", group.ID, "income", group.Income, "budget", group.Budget)
	publish(ctx, s.publisher, events.New(events.GroupSettingsUpdated, group.ID, actor.ID, group.ID))
	return group, nil
}

// GetGroup returns the actor's current group, or nil when the actor is in none.
func (s *GroupService) GetGroup(ctx context.Context, actor *models.User) (*models.Group, error) {
	if !actor.InGroup() {
		return nil, nil
	}

	group, err := s.store.GetGroup(ctx, actor.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", actor.GroupID, "error", err)
		return nil, storeError(err, "group not found")
	}
	return group, nil
}

// GetMembers lists the members of groupID. An empty groupID has no members.
func (s *GroupService) GetMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	if groupID == "" {
		return []models.Member{}, nil
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		slog.Error("GetMembers failed", "group_id", groupID, "error", err)
		return nil, storeError(err, "group not found")
	}

	slog.Debug("GetMembers successful", "group_id", groupID, "count", len(members))
	return members, nil
}
