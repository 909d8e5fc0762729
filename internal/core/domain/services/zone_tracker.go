package services

import (
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
)

// ZoneStatus says where an agent stands relative to both geofences of an order
// and which actions are legal from there.
type ZoneStatus struct {
	DistanceToPickupM  float64 `json:"distance_to_pickup_m"`
	DistanceToDropoffM float64 `json:"distance_to_dropoff_m"`
	InPickupZone       bool    `json:"in_pickup_zone"`
	InDropoffZone      bool    `json:"in_dropoff_zone"`
	CanPickup          bool    `json:"can_pickup"`
	CanDeliver         bool    `json:"can_deliver"`
	PickupBearing      float64 `json:"pickup_bearing"`
	DropoffBearing     float64 `json:"dropoff_bearing"`
	PickupDirection    string  `json:"pickup_direction"`
	DropoffDirection   string  `json:"dropoff_direction"`
	Advisory           bool    `json:"advisory"`
}

// GateByAccuracy withholds both actions when the sample is too imprecise to
// trust. Distances are kept for guidance.
func (z ZoneStatus) GateByAccuracy(accuracyM, maxAccuracyM float64) ZoneStatus {
	if accuracyM <= maxAccuracyM {
		return z
	}
	z.CanPickup = false
	z.CanDeliver = false
	z.Advisory = true
	return z
}

type ZoneTracker struct{}

func NewZoneTracker() ZoneTracker {
	return ZoneTracker{}
}

// Evaluate is a pure function of its arguments; it never mutates the order.
func (ZoneTracker) Evaluate(o *order.Order, position kernel.GeoPoint, cfg economy.Config) ZoneStatus {
	pickup := o.PickupPoint()
	dropoff := o.DropoffPoint()

	z := ZoneStatus{
		DistanceToPickupM:  kernel.DistanceMeters(position, pickup),
		DistanceToDropoffM: kernel.DistanceMeters(position, dropoff),
		PickupBearing:      kernel.BearingDegrees(position, pickup),
		DropoffBearing:     kernel.BearingDegrees(position, dropoff),
	}
	z.PickupDirection = kernel.CompassDirection(z.PickupBearing)
	z.DropoffDirection = kernel.CompassDirection(z.DropoffBearing)

	z.InPickupZone = z.DistanceToPickupM <= cfg.PickupRadiusM
	z.InDropoffZone = z.DistanceToDropoffM <= cfg.DropoffRadiusM
	z.CanPickup = z.InPickupZone && !o.IsPickedUp() && o.Status() == order.Pending
	z.CanDeliver = z.InDropoffZone && o.IsPickedUp() && !o.IsDelivered() && o.Status() == order.Active
	return z
}
