package commands

import (
	"context"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
)

// CancelOrderCommandHandler closes an order on the agent's request and records
// the reason.
//
// Example:
//
//	handler := NewCancelOrderCommandHandler(uowFactory, locks, publisher, clock, metrics, logger)
//	cmd, _ := NewCancelOrderCommand(agentID, orderID, "shift_ended")
//	o, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("cancel failed: %w", err)
//	}
//	// o.Status() == order.Cancelled
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keylock.KeyedMutex
	notifier   notifier
	metrics    ports.GameMetrics
}

// NewCancelOrderCommandHandler creates a cancel handler. Locks must be shared with
// every other handler that mutates an agent's orders.
func NewCancelOrderCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keylock.KeyedMutex,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics ports.GameMetrics,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		notifier:   notifier{publisher: publisher, clock: clock, logger: logger},
		metrics:    metrics,
	}
}

// Handle cancels a Pending, Active or Expired order. Cancelling a Completed or
// Cancelled order fails with order.ErrAlreadyTerminal.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(cmd.AgentID().String())
	defer unlock()

	var cancelled *order.Order
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

		if err = o.Cancel(cmd.Reason(), h.notifier.clock.Now()); err != nil {
			return err
		}
		if err = repo.Update(ctx, o); err != nil {
			return err
		}

		cancelled = o
		return uow.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	h.metrics.OrderCancelled(cancelled.CancelReason())
	h.notifier.publish(ctx, ports.AgentEvent{
		AgentID: cmd.AgentID(),
		Type:    ports.EventOrderCancelled,
		Payload: map[string]any{
			"order_id": cancelled.ID().String(),
			"reason":   cancelled.CancelReason(),
		},
	})
	return cancelled, nil
}
