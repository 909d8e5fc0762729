package commands

import (
	"context"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
)

// Delivery is the outcome of a completed order as seen by the agent.
type Delivery struct {
	Order           *order.Order
	Payout          economy.Payout
	Balance         float64
	TotalDeliveries int
}

// DeliverOrderCommandHandler completes an order and credits the payout to the
// agent. Both aggregates are saved in one unit of work, so the balance moves
// exactly once per completed order.
type DeliverOrderCommandHandler struct {
	uowFactory UoWFactory
	economy    *economy.Holder
	locks      *keylock.KeyedMutex
	notifier   notifier
	metrics    ports.GameMetrics
}

// NewDeliverOrderCommandHandler creates a deliver handler. It reads the economy
// once per call, so a swap mid-delivery does not change the payout.
func NewDeliverOrderCommandHandler(
	uowFactory UoWFactory,
	economyHolder *economy.Holder,
	locks *keylock.KeyedMutex,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics ports.GameMetrics,
	logger *slog.Logger,
) DeliverOrderCommandHandler {
	return DeliverOrderCommandHandler{
		uowFactory: uowFactory,
		economy:    economyHolder,
		locks:      locks,
		notifier:   notifier{publisher: publisher, clock: clock, logger: logger},
		metrics:    metrics,
	}
}

// Handle completes the agent's Active order and credits the payout.
//
// The order and agent are saved in one unit of work and retried on a version
// conflict. A position sample in the command must lie inside the dropoff zone.
// The order_delivered event goes out only after the commit.
func (h DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) (Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return Delivery{}, err
	}

	unlock := h.locks.Lock(cmd.AgentID().String())
	defer unlock()

	cfg := h.economy.Load()

	var result Delivery
	err := retryOnConflict(ctx, func() error {
		var err error
		result, err = h.deliver(ctx, cmd, cfg)
		return err
	})
	if err != nil {
		return Delivery{}, err
	}

	h.metrics.OrderDelivered(result.Payout.Total, result.Payout.OnTime)
	h.notifier.publish(ctx, ports.AgentEvent{
		AgentID: cmd.AgentID(),
		Type:    ports.EventOrderDelivered,
		Payload: map[string]any{
			"order_id":         result.Order.ID().String(),
			"payout":           result.Payout,
			"balance":          result.Balance,
			"total_deliveries": result.TotalDeliveries,
		},
	})
	return result, nil
}

func (h DeliverOrderCommandHandler) deliver(ctx context.Context, cmd DeliverOrderCommand, cfg economy.Config) (Delivery, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Delivery{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	agentRepo := uow.AgentRepository()

	o, err := loadOwnedOrder(ctx, orderRepo, cmd.orderRef)
	if err != nil {
		return Delivery{}, err
	}

	settlement, err := o.Deliver(h.notifier.clock.Now(), cfg)
	if err != nil {
		return Delivery{}, err
	}
	if err = checkDropoffZone(cmd.Sample(), o, cfg); err != nil {
		return Delivery{}, err
	}

	a, err := agentRepo.Get(ctx, settlement.AgentID)
	if err != nil {
		return Delivery{}, err
	}
	if err = a.ApplySettlement(settlement); err != nil {
		return Delivery{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return Delivery{}, err
	}
	if err = agentRepo.Update(ctx, a); err != nil {
		return Delivery{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Delivery{}, err
	}

	return Delivery{
		Order:           o,
		Payout:          settlement.Payout,
		Balance:         a.Balance(),
		TotalDeliveries: a.TotalDeliveries(),
	}, nil
}
