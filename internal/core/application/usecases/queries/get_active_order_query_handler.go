package queries

import (
	"context"
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// GetActiveOrderQueryHandler returns the agent's Pending or Active order with
// its remaining time.
//
// Example:
//
//	query, _ := NewGetActiveOrderQuery(agentID)
//	view, err := handler.Handle(ctx, query)
//	if errors.Is(err, ErrNoActiveOrder) {
//	    // nothing to show
//	}
type GetActiveOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	clock      ports.Clock
}

// NewGetActiveOrderQueryHandler creates the handler. The clock fixes "now" for
// the remaining-time fields.
func NewGetActiveOrderQueryHandler(uowFactory ports.UnitOfWorkFactory, clock ports.Clock) GetActiveOrderQueryHandler {
	return GetActiveOrderQueryHandler{uowFactory: uowFactory, clock: clock}
}

// Handle fails with ErrNoActiveOrder when the agent has nothing open.
func (h GetActiveOrderQueryHandler) Handle(ctx context.Context, query GetActiveOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	o, err := h.uowFactory.Create().OrderRepository().GetActiveByAgent(ctx, query.AgentID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return OrderView{}, ErrNoActiveOrder
	}
	if err != nil {
		return OrderView{}, err
	}

	return NewOrderView(o, h.clock.Now()), nil
}
