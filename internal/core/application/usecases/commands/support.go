package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// conflictAttempts bounds how often a transition is replayed after losing an
// optimistic version race. The replay reloads the aggregate, so the loser sees
// the winner's outcome (e.g. ErrAlreadyDelivered) instead of a version error.
const conflictAttempts = 3

var ErrOrderNotOwned = errors.New("order belongs to another agent")

func retryOnConflict(ctx context.Context, fn func() error) error {
	var err error
	for range conflictAttempts {
		if err = fn(); !errors.Is(err, errs.ErrVersionIsInvalid) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

// Events go out after commit; a failed publish never undoes the transition.
type notifier struct {
	publisher ports.EventPublisher
	clock     ports.Clock
	logger    *slog.Logger
}

func (n notifier) publish(ctx context.Context, event ports.AgentEvent) {
	if n.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = n.clock.Now()
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "agent event not published",
			"agent_id", event.AgentID.String(), "type", string(event.Type), "error", err)
	}
}
