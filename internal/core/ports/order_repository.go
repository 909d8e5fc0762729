package ports

import (
	"context"
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
)

// ErrAgentHasActiveOrder is returned by OrderRepository.Add when the agent
// already holds a Pending or Active order.
var ErrAgentHasActiveOrder = errors.New("agent already has an active order")

type OrderRepository interface {
	// Add stores a new order. The "no open order for this agent" check and the
	// insert are atomic; a concurrent second Add fails with ErrAgentHasActiveOrder.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update saves the aggregate if its stored version still equals
	// aggregate.Version(), and fails with errs.ErrVersionIsInvalid otherwise.
	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetActiveByAgent returns the agent's Pending or Active order, or errs.ErrObjectNotFound.
	GetActiveByAgent(ctx context.Context, agentID kernel.UUID) (*order.Order, error)

	// GetAllOpen returns every Pending or Active order.
	GetAllOpen(ctx context.Context) ([]*order.Order, error)
}
