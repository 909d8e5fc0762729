package commands

import (
	"context"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
)

// AgentDefaults fill in what a CreateAgentCommand leaves empty.
type AgentDefaults struct {
	RegionID       string
	SearchRadiusKm float64
	Bounds         agent.RadiusBounds
}

// CreateAgentCommandHandler registers a new player. Empty region and radius in
// the command fall back to AgentDefaults.
//
// Example:
//
//	handler := NewCreateAgentCommandHandler(uowFactory, defaults)
//	cmd, _ := NewCreateAgentCommand(kernel.NewUUID(), "rider42", "", 0)
//	agentID, err := handler.Handle(ctx, cmd)
type CreateAgentCommandHandler struct {
	uowFactory AgentUoWFactory
	defaults   AgentDefaults
}

// NewCreateAgentCommandHandler creates a handler that persists agents through
// uowFactory.
func NewCreateAgentCommandHandler(uowFactory AgentUoWFactory, defaults AgentDefaults) CreateAgentCommandHandler {
	return CreateAgentCommandHandler{
		uowFactory: uowFactory,
		defaults:   defaults,
	}
}

// Handle creates the agent with zero balance and no position.
func (h CreateAgentCommandHandler) Handle(ctx context.Context, cmd CreateAgentCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	regionID := cmd.RegionID()
	if regionID == "" {
		regionID = h.defaults.RegionID
	}
	radius := cmd.SearchRadiusKm()
	if radius == 0 {
		radius = h.defaults.SearchRadiusKm
	}

	a, err := agent.NewAgent(cmd.AgentID(), cmd.Name(), regionID, radius, h.defaults.Bounds)
	if err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.AgentRepository().Add(ctx, a); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return a.ID(), nil
}
