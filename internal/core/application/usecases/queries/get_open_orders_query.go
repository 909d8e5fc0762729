package queries

import (
	"errors"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrGetOpenOrdersQueryIsNotConstructed = errors.New(
	"GetOpenOrdersQuery must be created via NewGetOpenOrdersQuery constructor",
)

// GetOpenOrdersQuery lists every Pending or Active order across all agents,
// oldest first.
type GetOpenOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOpenOrdersQuery() GetOpenOrdersQuery {
	return GetOpenOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetOpenOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenOrdersQueryIsNotConstructed)
}

type GetOpenOrdersQueryResponse struct {
	ID             kernel.UUID `json:"id"`
	AgentID        kernel.UUID `json:"agent_id"`
	Status         string      `json:"status"`
	PickupName     string      `json:"pickup_name"`
	DropoffAddress string      `json:"dropoff_address"`
	Amount         float64     `json:"amount"`
	CreatedAt      time.Time   `json:"created_at"`
	ExpiresAt      time.Time   `json:"expires_at"`
}
