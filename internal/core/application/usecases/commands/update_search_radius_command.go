package commands

import (
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrUpdateSearchRadiusCommandIsNotConstructed = errors.New(
	"UpdateSearchRadiusCommand must be created via NewUpdateSearchRadiusCommand constructor",
)

// UpdateSearchRadiusCommand changes how far from the agent new orders may be
// matched. Bounds are enforced by the agent aggregate.
type UpdateSearchRadiusCommand struct { //nolint:recvcheck //using for validation
	agentID  kernel.UUID
	radiusKm float64

	guard guard.ConstructorGuard
}

func NewUpdateSearchRadiusCommand(agentID kernel.UUID, radiusKm float64) (UpdateSearchRadiusCommand, error) {
	if err := agentID.Validate(); err != nil {
		return UpdateSearchRadiusCommand{}, err
	}

	return UpdateSearchRadiusCommand{
		agentID:  agentID,
		radiusKm: radiusKm,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateSearchRadiusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateSearchRadiusCommandIsNotConstructed)
}

func (c UpdateSearchRadiusCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c UpdateSearchRadiusCommand) RadiusKm() float64 {
	return c.radiusKm
}
