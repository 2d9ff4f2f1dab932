// Package service implements the family ledger's operations on top of a storage.Store.
//
// Every exported method takes the acting user as resolved for the current request and
// returns *apperr.Error values, so the transport layer only has to map kinds to codes.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/events"
	"github.com/mmynk/familyledger/internal/storage"
)

// storeError classifies an error returned by the store. notFoundMsg is used when the
// record is missing.
func storeError(err error, notFoundMsg string) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		var e *apperr.Error
		if errors.As(err, &e) {
			return e
		}
		return apperr.StoreUnavailable(err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &apperr.Error{Kind: apperr.KindNotFound, Message: notFoundMsg, Err: err}
	}
	return apperr.StoreUnavailable(err)
}

// publish sends an event after a committed write. Failures are logged and swallowed.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish event", "type", event.Type, "group_id", event.GroupID, "error", err)
	}
}
