package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/catalog"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

var (
	ErrNoVendorsInRange      = errors.New("no vendors in range")
	ErrNoDestinationsInRange = errors.New("no destinations in range")
)

// CandidateIndex answers radius queries over a region's catalog, nearest first.
type CandidateIndex interface {
	NearbyVendors(ctx context.Context, regionID string, p kernel.GeoPoint, radiusKm float64) ([]catalog.Vendor, error)
	NearbyDestinations(ctx context.Context, regionID string, p kernel.GeoPoint, radiusKm float64) ([]catalog.Destination, error)
}

// DropoffRange bounds the vendor to destination leg, in km.
type DropoffRange struct {
	MinKm float64
	MaxKm float64
}

func DefaultDropoffRange() DropoffRange {
	return DropoffRange{MinKm: 0.5, MaxKm: 5.0}
}

func (r DropoffRange) Contains(km float64) bool {
	return km >= r.MinKm && km <= r.MaxKm
}

// MatchRequest is one agent asking for work.
type MatchRequest struct {
	AgentID  kernel.UUID
	RegionID string
	Position kernel.GeoPoint
	RadiusKm float64
}

func (r MatchRequest) Validate() error {
	var radiusErr error
	if r.RadiusKm <= 0 {
		radiusErr = errs.NewValueIsInvalidErrorWithCause("radius km", fmt.Errorf("%v is not greater than 0", r.RadiusKm))
	}
	var regionErr error
	if r.RegionID == "" {
		regionErr = errs.NewValueIsRequiredError("region")
	}
	return errors.Join(r.AgentID.Validate(), r.Position.Validate(), radiusErr, regionErr)
}

// Match is a playable vendor/destination pairing.
type Match struct {
	Vendor      catalog.Vendor
	Destination catalog.Destination
	Draft       order.Draft
	Stats       economy.Stats
}

// OrderMatcher pairs a vendor and a destination for an agent. A destination
// must be within the dropoff range of the vendor and, like the vendor, within
// the agent's search radius, so the whole job is playable without leaving it.
type OrderMatcher struct {
	index   CandidateIndex
	rnd     ports.RandomSource
	dropoff DropoffRange
	topK    int
}

// NewOrderMatcher picks the nearest vendor when topK <= 1, otherwise a random
// one among the topK nearest.
func NewOrderMatcher(index CandidateIndex, rnd ports.RandomSource, dropoff DropoffRange, topK int) OrderMatcher {
	return OrderMatcher{index: index, rnd: rnd, dropoff: dropoff, topK: topK}
}

func (m OrderMatcher) Match(ctx context.Context, req MatchRequest, cfg economy.Config) (Match, error) {
	if err := req.Validate(); err != nil {
		return Match{}, err
	}

	vendors, err := m.index.NearbyVendors(ctx, req.RegionID, req.Position, req.RadiusKm)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %w", ErrNoVendorsInRange, err)
	}
	if len(vendors) == 0 {
		return Match{}, ErrNoVendorsInRange
	}
	vendor := m.selectVendor(vendors)

	destinations, err := m.index.NearbyDestinations(ctx, req.RegionID, req.Position, req.RadiusKm)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %w", ErrNoDestinationsInRange, err)
	}
	candidates := m.filterByVendorLeg(vendor, destinations)
	if len(candidates) == 0 {
		return Match{}, ErrNoDestinationsInRange
	}
	destination := candidates[m.rnd.IntN(len(candidates))]

	distanceKm := kernel.DistanceKm(vendor.Location, destination.Location)
	return Match{
		Vendor:      vendor,
		Destination: destination,
		Draft: order.Draft{
			AgentID:        req.AgentID,
			PickupName:     vendor.Name,
			Pickup:         vendor.Location,
			DropoffAddress: destination.Address,
			Dropoff:        destination.Location,
			DistanceKm:     distanceKm,
			TimerSeconds:   cfg.TimerSeconds(distanceKm),
			Amount:         cfg.BasePayout(distanceKm),
		},
		Stats: cfg.DeliveryStats(distanceKm),
	}, nil
}

func (m OrderMatcher) selectVendor(nearestFirst []catalog.Vendor) catalog.Vendor {
	if m.topK <= 1 {
		return nearestFirst[0]
	}
	return nearestFirst[m.rnd.IntN(min(m.topK, len(nearestFirst)))]
}

func (m OrderMatcher) filterByVendorLeg(vendor catalog.Vendor, destinations []catalog.Destination) []catalog.Destination {
	result := make([]catalog.Destination, 0, len(destinations))
	for _, d := range destinations {
		if m.dropoff.Contains(kernel.DistanceKm(vendor.Location, d.Location)) {
			result = append(result, d)
		}
	}
	return result
}
