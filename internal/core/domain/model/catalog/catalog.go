// Package catalog holds the static pickup and dropoff candidates of a region.
package catalog

import (
	"errors"
	"strings"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// Vendor is a pickup candidate, typically a restaurant.
type Vendor struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Location kernel.GeoPoint `json:"location"`
	RegionID string          `json:"region_id"`
}

func NewVendor(id, name string, location kernel.GeoPoint, regionID string) (Vendor, error) {
	if err := errors.Join(
		required("vendor id", id),
		required("vendor name", name),
		required("region", regionID),
		location.Validate(),
	); err != nil {
		return Vendor{}, err
	}
	return Vendor{ID: id, Name: strings.TrimSpace(name), Location: location, RegionID: regionID}, nil
}

// Destination is a dropoff candidate, typically a building with a street address.
type Destination struct {
	ID       string          `json:"id"`
	Address  string          `json:"address"`
	Location kernel.GeoPoint `json:"location"`
	RegionID string          `json:"region_id"`
}

func NewDestination(id, address string, location kernel.GeoPoint, regionID string) (Destination, error) {
	if err := errors.Join(
		required("destination id", id),
		required("destination address", address),
		required("region", regionID),
		location.Validate(),
	); err != nil {
		return Destination{}, err
	}
	return Destination{ID: id, Address: strings.TrimSpace(address), Location: location, RegionID: regionID}, nil
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
