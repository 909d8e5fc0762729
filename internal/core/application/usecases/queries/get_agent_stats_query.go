package queries

import (
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrGetAgentStatsQueryIsNotConstructed = errors.New(
	"GetAgentStatsQuery must be created via NewGetAgentStatsQuery constructor",
)

// GetAgentStatsQuery aggregates an agent's order history.
type GetAgentStatsQuery struct {
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAgentStatsQuery(agentID kernel.UUID) (GetAgentStatsQuery, error) {
	if err := agentID.Validate(); err != nil {
		return GetAgentStatsQuery{}, err
	}
	return GetAgentStatsQuery{agentID: agentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAgentStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetAgentStatsQueryIsNotConstructed)
}

func (q GetAgentStatsQuery) AgentID() kernel.UUID {
	return q.agentID
}

type GetAgentStatsQueryResponse struct {
	AgentID         kernel.UUID `json:"agent_id"`
	Name            string      `json:"name"`
	Balance         float64     `json:"balance"`
	TotalDeliveries int         `json:"total_deliveries"`
	CompletedOrders int         `json:"completed_orders"`
	CancelledOrders int         `json:"cancelled_orders"`
	ExpiredOrders   int         `json:"expired_orders"`
	TotalEarnings   float64     `json:"total_earnings"`
	AveragePayout   float64     `json:"average_payout"`
}
