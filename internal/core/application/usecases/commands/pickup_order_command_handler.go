package commands

import (
	"context"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
)

// PickupOrderCommandHandler starts the delivery timer of a Pending order.
type PickupOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	economy    *economy.Holder
	locks      *keylock.KeyedMutex
	notifier   notifier
	metrics    ports.GameMetrics
}

// NewPickupOrderCommandHandler creates a pickup handler.
func NewPickupOrderCommandHandler(
	uowFactory OrderUoWFactory,
	economyHolder *economy.Holder,
	locks *keylock.KeyedMutex,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics ports.GameMetrics,
	logger *slog.Logger,
) PickupOrderCommandHandler {
	return PickupOrderCommandHandler{
		uowFactory: uowFactory,
		economy:    economyHolder,
		locks:      locks,
		notifier:   notifier{publisher: publisher, clock: clock, logger: logger},
		metrics:    metrics,
	}
}

// Handle moves the agent's Pending order to Active.
//
// When the command carries a position sample it must be accurate enough
// (ErrPositionTooInaccurate) and inside the pickup zone (ErrNotInPickupZone).
// Orders of other agents fail with ErrOrderNotOwned.
//
// Example:
//
//	sample := &PositionSample{Point: here, AccuracyM: 8}
//	cmd, _ := NewPickupOrderCommand(agentID, orderID, sample)
//	o, err := handler.Handle(ctx, cmd)
func (h PickupOrderCommandHandler) Handle(ctx context.Context, cmd PickupOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(cmd.AgentID().String())
	defer unlock()

	cfg := h.economy.Load()

	var picked *order.Order
	err := retryOnConflict(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		repo := uow.OrderRepository()
		o, err := loadOwnedOrder(ctx, repo, cmd.orderRef)
		if err != nil {
			return err
		}

		if err = o.Pickup(h.notifier.clock.Now()); err != nil {
			return err
		}
		if err = checkPickupZone(cmd.Sample(), o, cfg); err != nil {
			return err
		}

		if err = repo.Update(ctx, o); err != nil {
			return err
		}

		picked = o
		return uow.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	h.metrics.OrderPickedUp()
	h.notifier.publish(ctx, ports.AgentEvent{
		AgentID: cmd.AgentID(),
		Type:    ports.EventOrderPickedUp,
		Payload: map[string]any{
			"order_id":        picked.ID().String(),
			"timer_seconds":   picked.TimerSeconds(),
			"time_remaining":  picked.TimeRemainingSeconds(h.notifier.clock.Now()),
			"dropoff_address": picked.DropoffAddress(),
		},
	})
	return picked, nil
}

func loadOwnedOrder(ctx context.Context, repo ports.OrderRepository, ref orderRef) (*order.Order, error) {
	o, err := repo.Get(ctx, ref.OrderID())
	if err != nil {
		return nil, err
	}
	if !o.AgentID().IsEqual(ref.AgentID()) {
		return nil, ErrOrderNotOwned
	}
	return o, nil
}
