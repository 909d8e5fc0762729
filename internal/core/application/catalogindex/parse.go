package catalogindex

import (
	"fmt"
	"strings"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/catalog"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseVendors reads restaurant features. Features without a "name" property
// or a usable geometry are skipped and counted.
func ParseVendors(regionID string, fc *geojson.FeatureCollection) ([]catalog.Vendor, int) {
	if fc == nil {
		return []catalog.Vendor{}, 0
	}

	vendors := make([]catalog.Vendor, 0, len(fc.Features))
	skipped := 0
	for n, f := range fc.Features {
		p, ok := featurePoint(f)
		if !ok {
			skipped++
			continue
		}
		v, err := catalog.NewVendor(featureID(f, regionID, "v", n), f.Properties.MustString("name", ""), p, regionID)
		if err != nil {
			skipped++
			continue
		}
		vendors = append(vendors, v)
	}
	return vendors, skipped
}

// ParseDestinations reads building features. The address is "addr:street"
// followed by "addr:housenumber"; features where both are empty are skipped.
func ParseDestinations(regionID string, fc *geojson.FeatureCollection) ([]catalog.Destination, int) {
	if fc == nil {
		return []catalog.Destination{}, 0
	}

	destinations := make([]catalog.Destination, 0, len(fc.Features))
	skipped := 0
	for n, f := range fc.Features {
		p, ok := featurePoint(f)
		if !ok {
			skipped++
			continue
		}
		address := strings.TrimSpace(f.Properties.MustString("addr:street", "") + " " + f.Properties.MustString("addr:housenumber", ""))
		d, err := catalog.NewDestination(featureID(f, regionID, "d", n), address, p, regionID)
		if err != nil {
			skipped++
			continue
		}
		destinations = append(destinations, d)
	}
	return destinations, skipped
}

// featurePoint takes a Point as is and reduces other geometries (building
// outlines) to the center of their bound.
func featurePoint(f *geojson.Feature) (kernel.GeoPoint, bool) {
	if f == nil || f.Geometry == nil {
		return kernel.GeoPoint{}, false
	}

	var pt orb.Point
	switch g := f.Geometry.(type) {
	case orb.Point:
		pt = g
	default:
		pt = g.Bound().Center()
	}

	p, err := kernel.GeoPointFromOrb(pt)
	if err != nil {
		return kernel.GeoPoint{}, false
	}
	return p, true
}

func featureID(f *geojson.Feature, regionID, kind string, n int) string {
	if f.ID != nil {
		if s := fmt.Sprint(f.ID); s != "" {
			return s
		}
	}
	if id := f.Properties.MustString("@id", ""); id != "" {
		return id
	}
	return fmt.Sprintf("%s-%s-%d", regionID, kind, n)
}
