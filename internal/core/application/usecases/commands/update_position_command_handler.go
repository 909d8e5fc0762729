package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// PositionUpdate is what the agent sees after reporting a sample. Zone is nil
// when the agent has no open order.
type PositionUpdate struct {
	Position   kernel.GeoPoint
	Confidence string
	Zone       *services.ZoneStatus
}

// UpdatePositionCommandHandler stores the sample as the agent's last position
// and, when an order is open, evaluates both geofences and emits zone_status.
type UpdatePositionCommandHandler struct {
	uowFactory UoWFactory
	economy    *economy.Holder
	zones      services.ZoneTracker
	notifier   notifier
}

// NewUpdatePositionCommandHandler creates the handler for GPS samples.
func NewUpdatePositionCommandHandler(
	uowFactory UoWFactory,
	economyHolder *economy.Holder,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) UpdatePositionCommandHandler {
	return UpdatePositionCommandHandler{
		uowFactory: uowFactory,
		economy:    economyHolder,
		zones:      services.NewZoneTracker(),
		notifier:   notifier{publisher: publisher, clock: clock, logger: logger},
	}
}

// Handle stores the sample and reports the agent's zone status, if any.
func (h UpdatePositionCommandHandler) Handle(ctx context.Context, cmd UpdatePositionCommand) (PositionUpdate, error) {
	if err := cmd.Validate(); err != nil {
		return PositionUpdate{}, err
	}

	cfg := h.economy.Load()
	result := PositionUpdate{
		Position:   cmd.Position(),
		Confidence: kernel.AccuracyConfidence(cmd.AccuracyM()),
	}

	// Positions are last-write-wins; a lost version race only means another
	// write (e.g. a delivery credit) landed first, so the sample is replayed.
	err := retryOnConflict(ctx, func() error {
		zone, err := h.store(ctx, cmd, cfg)
		result.Zone = zone
		return err
	})
	if err != nil {
		return PositionUpdate{}, err
	}

	if result.Zone != nil {
		h.notifier.publish(ctx, ports.AgentEvent{
			AgentID: cmd.AgentID(),
			Type:    ports.EventZoneStatus,
			Payload: result.Zone,
		})
	}

	return result, nil
}

func (h UpdatePositionCommandHandler) store(ctx context.Context, cmd UpdatePositionCommand, cfg economy.Config) (*services.ZoneStatus, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	agentRepo := uow.AgentRepository()
	a, err := agentRepo.Get(ctx, cmd.AgentID())
	if err != nil {
		return nil, err
	}

	if err = a.UpdatePosition(cmd.Position(), h.notifier.clock.Now()); err != nil {
		return nil, err
	}
	if err = agentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	var zone *services.ZoneStatus
	o, err := uow.OrderRepository().GetActiveByAgent(ctx, a.ID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
	case err != nil:
		return nil, err
	default:
		z := h.zones.Evaluate(o, cmd.Position(), cfg).GateByAccuracy(cmd.AccuracyM(), cfg.MaxGpsAccuracyM)
		zone = &z
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return zone, nil
}
