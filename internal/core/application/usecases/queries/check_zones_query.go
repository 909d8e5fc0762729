package queries

import (
	"errors"
	"fmt"
	"math"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrCheckZonesQueryIsNotConstructed = errors.New(
	"CheckZonesQuery must be created via NewCheckZonesQuery constructor",
)

// CheckZonesQuery evaluates a position against the agent's open order without
// recording it.
type CheckZonesQuery struct {
	agentID   kernel.UUID
	position  kernel.GeoPoint
	accuracyM float64

	guard guard.ConstructorGuard
}

func NewCheckZonesQuery(agentID kernel.UUID, latitude, longitude, accuracyM float64) (CheckZonesQuery, error) {
	position, posErr := kernel.NewGeoPoint(latitude, longitude)
	var accErr error
	if math.IsNaN(accuracyM) || accuracyM < 0 {
		accErr = errs.NewValueIsInvalidErrorWithCause("accuracy", fmt.Errorf("%v is negative", accuracyM))
	}
	if err := errors.Join(agentID.Validate(), posErr, accErr); err != nil {
		return CheckZonesQuery{}, err
	}

	return CheckZonesQuery{
		agentID:   agentID,
		position:  position,
		accuracyM: accuracyM,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q CheckZonesQuery) Validate() error {
	return q.guard.Validate(ErrCheckZonesQueryIsNotConstructed)
}

func (q CheckZonesQuery) AgentID() kernel.UUID {
	return q.agentID
}

func (q CheckZonesQuery) Position() kernel.GeoPoint {
	return q.position
}

func (q CheckZonesQuery) AccuracyM() float64 {
	return q.accuracyM
}
