package commands

import (
	"context"
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/catalog"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
)

// Matcher is the subset of services.OrderMatcher the handler depends on.
type Matcher interface {
	Match(ctx context.Context, req services.MatchRequest, cfg economy.Config) (services.Match, error)
}

// FoundOrder is a freshly created Pending order plus the offer details shown
// to the agent.
type FoundOrder struct {
	Order       *order.Order
	Vendor      catalog.Vendor
	Destination catalog.Destination
	Stats       economy.Stats
}

// FindOrderCommandHandler matches a vendor and destination for the agent and
// persists the result as a Pending order. The repository's Add is the
// authority on "one open order per agent"; the early check only saves a
// catalog query.
type FindOrderCommandHandler struct {
	uowFactory UoWFactory
	matcher    Matcher
	economy    *economy.Holder
	locks      *keylock.KeyedMutex
	clock      ports.Clock
	metrics    ports.GameMetrics
}

// NewFindOrderCommandHandler creates a handler that matches through matcher and
// persists the result through uowFactory.
func NewFindOrderCommandHandler(
	uowFactory UoWFactory,
	matcher Matcher,
	economyHolder *economy.Holder,
	locks *keylock.KeyedMutex,
	clock ports.Clock,
	metrics ports.GameMetrics,
) FindOrderCommandHandler {
	return FindOrderCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		economy:    economyHolder,
		locks:      locks,
		clock:      clock,
		metrics:    metrics,
	}
}

// Handle matches an order around the agent's last position.
//
// Region and radius default to the agent's own settings. It fails with
// ports.ErrAgentHasActiveOrder while an order is open, with
// services.ErrNoVendorsInRange or services.ErrNoDestinationsInRange when the
// catalog has no fit, and with the context error if the search was stopped
// before the order was saved.
func (h FindOrderCommandHandler) Handle(ctx context.Context, cmd FindOrderCommand) (FoundOrder, error) {
	if err := cmd.Validate(); err != nil {
		return FoundOrder{}, err
	}

	unlock := h.locks.Lock(cmd.AgentID().String())
	defer unlock()

	cfg := h.economy.Load()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return FoundOrder{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, err := uow.AgentRepository().Get(ctx, cmd.AgentID())
	if err != nil {
		return FoundOrder{}, err
	}
	position, err := a.LastPosition()
	if err != nil {
		return FoundOrder{}, err
	}

	orderRepo := uow.OrderRepository()
	if err = ensureNoOpenOrder(ctx, orderRepo, a.ID()); err != nil {
		return FoundOrder{}, err
	}

	req := services.MatchRequest{
		AgentID:  a.ID(),
		RegionID: cmd.RegionID(),
		Position: position,
		RadiusKm: cmd.RadiusKm(),
	}
	if req.RegionID == "" {
		req.RegionID = a.RegionID()
	}
	if req.RadiusKm == 0 {
		req.RadiusKm = a.SearchRadiusKm()
	}

	match, err := h.matcher.Match(ctx, req, cfg)
	if err != nil {
		return FoundOrder{}, err
	}

	o, err := order.NewOrder(kernel.NewUUID(), match.Draft, h.clock.Now(), cfg.PickupTimeout())
	if err != nil {
		return FoundOrder{}, err
	}

	// A search stopped while matching must not leave an order behind.
	if err = ctx.Err(); err != nil {
		return FoundOrder{}, err
	}

	if err = orderRepo.Add(ctx, o); err != nil {
		return FoundOrder{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return FoundOrder{}, err
	}

	h.metrics.OrderCreated(req.RegionID)
	return FoundOrder{
		Order:       o,
		Vendor:      match.Vendor,
		Destination: match.Destination,
		Stats:       match.Stats,
	}, nil
}

func ensureNoOpenOrder(ctx context.Context, repo ports.OrderRepository, agentID kernel.UUID) error {
	_, err := repo.GetActiveByAgent(ctx, agentID)
	switch {
	case err == nil:
		return ports.ErrAgentHasActiveOrder
	case errors.Is(err, errs.ErrObjectNotFound):
		return nil
	default:
		return err
	}
}
