package commands

import (
	"context"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
)

// UpdateSearchRadiusCommandHandler changes the radius later searches default to.
type UpdateSearchRadiusCommandHandler struct {
	uowFactory AgentUoWFactory
	bounds     agent.RadiusBounds
}

// NewUpdateSearchRadiusCommandHandler checks every radius against bounds.
func NewUpdateSearchRadiusCommandHandler(uowFactory AgentUoWFactory, bounds agent.RadiusBounds) UpdateSearchRadiusCommandHandler {
	return UpdateSearchRadiusCommandHandler{
		uowFactory: uowFactory,
		bounds:     bounds,
	}
}

// Handle returns the stored radius.
func (h UpdateSearchRadiusCommandHandler) Handle(ctx context.Context, cmd UpdateSearchRadiusCommand) (float64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	var radius float64
	err := retryOnConflict(ctx, func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		repo := uow.AgentRepository()
		a, err := repo.Get(ctx, cmd.AgentID())
		if err != nil {
			return err
		}

		if err = a.SetSearchRadius(cmd.RadiusKm(), h.bounds); err != nil {
			return err
		}
		if err = repo.Update(ctx, a); err != nil {
			return err
		}

		radius = a.SearchRadiusKm()
		return uow.Commit(ctx)
	})
	if err != nil {
		return 0, err
	}

	return radius, nil
}
