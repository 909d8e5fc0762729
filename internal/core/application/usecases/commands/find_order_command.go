package commands

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrFindOrderCommandIsNotConstructed = errors.New(
	"FindOrderCommand must be created via NewFindOrderCommand constructor",
)

// FindOrderCommand asks for a new order around the agent's last reported
// position. Zero radius means the agent's own search radius; an empty region
// means the agent's region.
type FindOrderCommand struct { //nolint:recvcheck //using for validation
	agentID  kernel.UUID
	regionID string
	radiusKm float64

	guard guard.ConstructorGuard
}

func NewFindOrderCommand(agentID kernel.UUID, regionID string, radiusKm float64) (FindOrderCommand, error) {
	cmd := FindOrderCommand{
		regionID: strings.TrimSpace(regionID),
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAgentID(agentID),
		cmd.setRadius(radiusKm),
	); err != nil {
		return FindOrderCommand{}, err
	}

	return cmd, nil
}

func (c FindOrderCommand) Validate() error {
	return c.guard.Validate(ErrFindOrderCommandIsNotConstructed)
}

func (c FindOrderCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c FindOrderCommand) RegionID() string {
	return c.regionID
}

func (c FindOrderCommand) RadiusKm() float64 {
	return c.radiusKm
}

func (c *FindOrderCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *FindOrderCommand) setRadius(radiusKm float64) error {
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return errs.NewValueIsInvalidErrorWithCause("radius km", fmt.Errorf("%v is negative", radiusKm))
	}

	c.radiusKm = radiusKm
	return nil
}
