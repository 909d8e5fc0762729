package ports

import (
	"context"
	"errors"

	"github.com/paulmach/orb/geojson"
)

var ErrRegionNotFound = errors.New("region not found")

// CatalogSource supplies the static point datasets of a region as GeoJSON.
// Vendor features carry a "name" property; destination features carry
// "addr:street" and "addr:housenumber".
type CatalogSource interface {
	Vendors(ctx context.Context, regionID string) (*geojson.FeatureCollection, error)
	Destinations(ctx context.Context, regionID string) (*geojson.FeatureCollection, error)
	Regions(ctx context.Context) ([]string, error)
}
