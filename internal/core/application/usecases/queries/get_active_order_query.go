package queries

import (
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var (
	ErrGetActiveOrderQueryIsNotConstructed = errors.New(
		"GetActiveOrderQuery must be created via NewGetActiveOrderQuery constructor",
	)
	ErrNoActiveOrder = errors.New("agent has no active order")
)

// GetActiveOrderQuery returns the agent's Pending or Active order with its
// remaining time, or ErrNoActiveOrder.
type GetActiveOrderQuery struct {
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetActiveOrderQuery(agentID kernel.UUID) (GetActiveOrderQuery, error) {
	if err := agentID.Validate(); err != nil {
		return GetActiveOrderQuery{}, err
	}
	return GetActiveOrderQuery{agentID: agentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrderQueryIsNotConstructed)
}

func (q GetActiveOrderQuery) AgentID() kernel.UUID {
	return q.agentID
}
