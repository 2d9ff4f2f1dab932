// Package events publishes activity events after successful writes to the ledger.
//
// Publishing is best effort: the write has already committed when an event is sent,
// so callers log publish failures instead of failing the request.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types.
const (
	GroupCreated         = "group.created"
	GroupJoined          = "group.joined"
	GroupLeft            = "group.left"
	GroupSettingsUpdated = "group.settings_updated"
	ExpenseAdded         = "expense.added"
	ExpenseDeleted       = "expense.deleted"
	BillAdded            = "bill.added"
	BillPinToggled       = "bill.pin_toggled"
	BillDeleted          = "bill.deleted"
)

// Event describes one change to a group's shared state.
type Event struct {
	Type       string    `json:"type"`
	GroupID    string    `json:"group_id,omitempty"`
	ActorID    string    `json:"actor_id"`
	SubjectID  string    `json:"subject_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New creates an event stamped with the current time.
func New(eventType, groupID, actorID, subjectID string) Event {
	return Event{
		Type:       eventType,
		GroupID:    groupID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON serializes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
