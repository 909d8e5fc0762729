package queries

import (
	"context"
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// ZoneCheck is the geofence status of the agent's open order at one position.
type ZoneCheck struct {
	OrderID    kernel.UUID         `json:"order_id"`
	Zone       services.ZoneStatus `json:"zone"`
	Confidence string              `json:"gps_confidence"`
}

// CheckZonesQueryHandler evaluates a position against the open order without
// storing it. Inaccurate positions yield an advisory status with no actions.
type CheckZonesQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	economy    *economy.Holder
	zones      services.ZoneTracker
}

// NewCheckZonesQueryHandler creates a zone check handler.
func NewCheckZonesQueryHandler(uowFactory ports.UnitOfWorkFactory, economyHolder *economy.Holder) CheckZonesQueryHandler {
	return CheckZonesQueryHandler{
		uowFactory: uowFactory,
		economy:    economyHolder,
		zones:      services.NewZoneTracker(),
	}
}

// Handle fails with ErrNoActiveOrder when the agent has nothing open.
func (h CheckZonesQueryHandler) Handle(ctx context.Context, query CheckZonesQuery) (ZoneCheck, error) {
	if err := query.Validate(); err != nil {
		return ZoneCheck{}, err
	}

	o, err := h.uowFactory.Create().OrderRepository().GetActiveByAgent(ctx, query.AgentID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ZoneCheck{}, ErrNoActiveOrder
	}
	if err != nil {
		return ZoneCheck{}, err
	}

	cfg := h.economy.Load()
	return ZoneCheck{
		OrderID:    o.ID(),
		Zone:       h.zones.Evaluate(o, query.Position(), cfg).GateByAccuracy(query.AccuracyM(), cfg.MaxGpsAccuracyM),
		Confidence: kernel.AccuracyConfidence(query.AccuracyM()),
	}, nil
}
