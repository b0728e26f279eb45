// Package service implements the settleup.v1 Connect services on top of the
// store, the engine and the event bus.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// callerID returns the authenticated member ID.
func callerID(ctx context.Context) (string, error) {
	id := middleware.GetUserID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// memberGroup loads a group and checks that memberID is on its roster.
func memberGroup(ctx context.Context, store storage.Ledger, groupID, memberID string) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(memberID) {
		return nil, fmt.Errorf("%s is not a member of group %s: %w", memberID, groupID, apperrors.ErrPermissionDenied)
	}
	return group, nil
}

// notifier publishes ledger events after a mutation has committed. Publish
// failures are logged; the mutation already succeeded.
type notifier struct {
	bus     events.Publisher
	metrics *metrics.Metrics
}

func (n notifier) publish(ctx context.Context, groupID string, kind events.Kind) {
	if n.bus == nil {
		return
	}
	// The request context may end right after the response is written.
	ctx = context.WithoutCancel(ctx)
	if err := n.bus.Publish(ctx, events.Event{GroupID: groupID, Kind: kind}); err != nil {
		slog.Warn("Failed to publish event", "group_id", groupID, "kind", kind, "error", err)
		return
	}
	n.metrics.EventPublished(string(kind))
}
