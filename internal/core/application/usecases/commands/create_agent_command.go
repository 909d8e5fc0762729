package commands

import (
	"errors"
	"strings"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrCreateAgentCommandIsNotConstructed = errors.New(
	"CreateAgentCommand must be created via NewCreateAgentCommand constructor",
)

// CreateAgentCommand registers a player the first time the auth layer sees them.
// An empty region falls back to the deployment's default region; a zero radius
// falls back to the default search radius.
//
// Example:
//
//	cmd, err := NewCreateAgentCommand(kernel.NewUUID(), "rider42", "almaty", 5)
//	if err != nil {
//	    return err
//	}
//	agentID, err := handler.Handle(ctx, cmd)
type CreateAgentCommand struct { //nolint:recvcheck //using for validation
	agentID        kernel.UUID
	name           string
	regionID       string
	searchRadiusKm float64

	guard guard.ConstructorGuard
}

func NewCreateAgentCommand(agentID kernel.UUID, name, regionID string, searchRadiusKm float64) (CreateAgentCommand, error) {
	cmd := CreateAgentCommand{
		regionID:       strings.TrimSpace(regionID),
		searchRadiusKm: searchRadiusKm,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAgentID(agentID),
		cmd.setName(name),
	); err != nil {
		return CreateAgentCommand{}, err
	}

	return cmd, nil
}

func (c CreateAgentCommand) Validate() error {
	return c.guard.Validate(ErrCreateAgentCommandIsNotConstructed)
}

func (c CreateAgentCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c CreateAgentCommand) Name() string {
	return c.name
}

func (c CreateAgentCommand) RegionID() string {
	return c.regionID
}

func (c CreateAgentCommand) SearchRadiusKm() float64 {
	return c.searchRadiusKm
}

func (c *CreateAgentCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *CreateAgentCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}

	c.name = name
	return nil
}
