package commands

import (
	"errors"
	"fmt"
	"math"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

var (
	ErrNotInPickupZone       = errors.New("agent is not in the pickup zone")
	ErrNotInDropoffZone      = errors.New("agent is not in the dropoff zone")
	ErrPositionTooInaccurate = errors.New("gps accuracy is too low to confirm the action")
)

// PositionSample is an optional GPS fix attached to pickup and deliver. When
// present the handler refuses the action outside the zone.
type PositionSample struct {
	Point     kernel.GeoPoint
	AccuracyM float64
}

func NewPositionSample(latitude, longitude, accuracyM float64) (*PositionSample, error) {
	p, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(accuracyM) || accuracyM < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("accuracy", fmt.Errorf("%v is negative", accuracyM))
	}
	return &PositionSample{Point: p, AccuracyM: accuracyM}, nil
}

func checkPickupZone(sample *PositionSample, o *order.Order, cfg economy.Config) error {
	if sample == nil {
		return nil
	}
	z := services.NewZoneTracker().Evaluate(o, sample.Point, cfg).GateByAccuracy(sample.AccuracyM, cfg.MaxGpsAccuracyM)
	switch {
	case z.Advisory:
		return ErrPositionTooInaccurate
	case !z.InPickupZone:
		return fmt.Errorf("%w: %.0f m away", ErrNotInPickupZone, z.DistanceToPickupM)
	}
	return nil
}

func checkDropoffZone(sample *PositionSample, o *order.Order, cfg economy.Config) error {
	if sample == nil {
		return nil
	}
	z := services.NewZoneTracker().Evaluate(o, sample.Point, cfg).GateByAccuracy(sample.AccuracyM, cfg.MaxGpsAccuracyM)
	switch {
	case z.Advisory:
		return ErrPositionTooInaccurate
	case !z.InDropoffZone:
		return fmt.Errorf("%w: %.0f m away", ErrNotInDropoffZone, z.DistanceToDropoffM)
	}
	return nil
}
