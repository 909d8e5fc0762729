package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
)

// ExpireOrdersCommandHandler is the periodic sweep. Each candidate is reloaded
// and re-checked inside its own unit of work under the agent's lock, so an
// order that was delivered or cancelled meanwhile is left alone.
type ExpireOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keylock.KeyedMutex
	notifier   notifier
	metrics    ports.GameMetrics
}

// NewExpireOrdersCommandHandler creates the handler behind the expiry sweep job.
func NewExpireOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keylock.KeyedMutex,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics ports.GameMetrics,
	logger *slog.Logger,
) ExpireOrdersCommandHandler {
	return ExpireOrdersCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		notifier:   notifier{publisher: publisher, clock: clock, logger: logger},
		metrics:    metrics,
	}
}

// Handle returns the ids of the orders it expired. Failures on single orders
// do not stop the sweep; they are joined into the returned error.
func (h ExpireOrdersCommandHandler) Handle(ctx context.Context, cmd ExpireOrdersCommand) ([]kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	open, err := h.openOrders(ctx)
	if err != nil {
		return nil, err
	}

	now := h.notifier.clock.Now()
	expired := make([]kernel.UUID, 0)
	var failures []error
	for _, candidate := range open {
		if !candidate.IsExpired(now) {
			continue
		}

		ok, err := h.expireOne(ctx, candidate.AgentID(), candidate.ID())
		if err != nil {
			failures = append(failures, fmt.Errorf("order %s: %w", candidate.ID(), err))
			continue
		}
		if !ok {
			continue
		}

		expired = append(expired, candidate.ID())
		h.notifier.publish(ctx, ports.AgentEvent{
			AgentID: candidate.AgentID(),
			Type:    ports.EventOrderExpired,
			Payload: map[string]any{"order_id": candidate.ID().String()},
		})
	}

	if len(expired) > 0 {
		h.metrics.OrderExpired(len(expired))
	}
	return expired, errors.Join(failures...)
}

func (h ExpireOrdersCommandHandler) openOrders(ctx context.Context) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().GetAllOpen(ctx)
}

func (h ExpireOrdersCommandHandler) expireOne(ctx context.Context, agentID, orderID kernel.UUID) (bool, error) {
	unlock := h.locks.Lock(agentID.String())
	defer unlock()

	var changed bool
	err := retryOnConflict(ctx, func() error {
		changed = false

		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		repo := uow.OrderRepository()
		o, err := repo.Get(ctx, orderID)
		if err != nil {
			return err
		}

		ok, err := o.Expire(h.notifier.clock.Now())
		if errors.Is(err, order.ErrNotDue) {
			return nil
		}
		if err != nil || !ok {
			return err
		}

		if err = repo.Update(ctx, o); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		changed = true
		return nil
	})
	return changed, err
}
