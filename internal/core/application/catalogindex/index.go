package catalogindex

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/catalog"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/logging"
)

// region is immutable once published; invalidation swaps the map entry, it
// never edits the slices a concurrent query may be iterating.
type region struct {
	vendors      []catalog.Vendor
	destinations []catalog.Destination
	loadedAt     time.Time
}

// Index is the per-region cache of pickup and dropoff candidates. Regions load
// lazily on first query (or eagerly through LoadRegion) and stay cached until
// Invalidate.
type Index struct {
	source ports.CatalogSource
	clock  ports.Clock
	logger *slog.Logger

	mu      sync.RWMutex
	regions map[string]*region
	loads   *keylock.KeyedMutex
}

func New(source ports.CatalogSource, clock ports.Clock, logger *slog.Logger) *Index {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Index{
		source:  source,
		clock:   clock,
		logger:  logger.With("component", "catalog_index"),
		regions: make(map[string]*region),
		loads:   keylock.New(),
	}
}

// LoadRegion parses the region's datasets unless they are already cached.
// Concurrent calls for the same region load it once.
func (i *Index) LoadRegion(ctx context.Context, regionID string) error {
	_, err := i.region(ctx, regionID)
	return err
}

// Invalidate drops the cached region; the next query reloads it.
func (i *Index) Invalidate(regionID string) {
	i.mu.Lock()
	delete(i.regions, regionID)
	i.mu.Unlock()
	i.logger.Info("catalog region invalidated", "region", regionID)
}

// Reload parses the region again and swaps it in. Queries keep using the
// cached copy until the new one is ready; a failed reload keeps it for good.
func (i *Index) Reload(ctx context.Context, regionID string) error {
	unlock := i.loads.Lock(regionID)
	defer unlock()

	r, err := i.load(ctx, regionID)
	if err != nil {
		i.logger.ErrorContext(ctx, "catalog region reload failed", "region", regionID, "error", err)
		return err
	}

	i.mu.Lock()
	i.regions[regionID] = r
	i.mu.Unlock()

	i.logger.InfoContext(ctx, "catalog region reloaded",
		"region", regionID, "vendors", len(r.vendors), "destinations", len(r.destinations))
	return nil
}

// Stats reports cached regions and their candidate counts.
func (i *Index) Stats() map[string][2]int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string][2]int, len(i.regions))
	for id, r := range i.regions {
		out[id] = [2]int{len(r.vendors), len(r.destinations)}
	}
	return out
}

// NearbyVendors returns the region's vendors within radiusKm of p, nearest
// first. A region that cannot be loaded yields no vendors plus the load error.
func (i *Index) NearbyVendors(ctx context.Context, regionID string, p kernel.GeoPoint, radiusKm float64) ([]catalog.Vendor, error) {
	r, err := i.region(ctx, regionID)
	if err != nil {
		return []catalog.Vendor{}, err
	}
	return nearest(r.vendors, p, radiusKm, func(v catalog.Vendor) kernel.GeoPoint { return v.Location }), nil
}

// NearbyDestinations is NearbyVendors for dropoff candidates.
func (i *Index) NearbyDestinations(ctx context.Context, regionID string, p kernel.GeoPoint, radiusKm float64) ([]catalog.Destination, error) {
	r, err := i.region(ctx, regionID)
	if err != nil {
		return []catalog.Destination{}, err
	}
	return nearest(r.destinations, p, radiusKm, func(d catalog.Destination) kernel.GeoPoint { return d.Location }), nil
}

func (i *Index) cached(regionID string) (*region, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	r, ok := i.regions[regionID]
	return r, ok
}

func (i *Index) region(ctx context.Context, regionID string) (*region, error) {
	if r, ok := i.cached(regionID); ok {
		return r, nil
	}

	unlock := i.loads.Lock(regionID)
	defer unlock()
	if r, ok := i.cached(regionID); ok {
		return r, nil
	}

	r, err := i.load(ctx, regionID)
	if err != nil {
		i.logger.ErrorContext(ctx, "catalog region load failed", "region", regionID, "error", err)
		return nil, err
	}

	i.mu.Lock()
	i.regions[regionID] = r
	i.mu.Unlock()

	i.logger.InfoContext(ctx, "catalog region loaded",
		"region", regionID, "vendors", len(r.vendors), "destinations", len(r.destinations))
	return r, nil
}

func (i *Index) load(ctx context.Context, regionID string) (r *region, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("catalog region %q: parse panic: %v", regionID, p)
		}
	}()

	vendorFC, err := i.source.Vendors(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("catalog region %q vendors: %w", regionID, err)
	}
	destinationFC, err := i.source.Destinations(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("catalog region %q destinations: %w", regionID, err)
	}

	vendors, skippedVendors := ParseVendors(regionID, vendorFC)
	destinations, skippedDestinations := ParseDestinations(regionID, destinationFC)
	if skippedVendors+skippedDestinations > 0 {
		i.logger.DebugContext(ctx, "catalog features skipped",
			"region", regionID, "vendors", skippedVendors, "destinations", skippedDestinations)
	}

	return &region{vendors: vendors, destinations: destinations, loadedAt: i.clock.Now()}, nil
}

type ranked[T any] struct {
	item       T
	distanceKm float64
}

func nearest[T any](items []T, p kernel.GeoPoint, radiusKm float64, location func(T) kernel.GeoPoint) []T {
	box := kernel.BoundingBox(p, radiusKm)

	hits := make([]ranked[T], 0)
	for _, item := range items {
		loc := location(item)
		if !box.Contains(loc.Orb()) {
			continue
		}
		if d := kernel.DistanceKm(p, loc); d <= radiusKm {
			hits = append(hits, ranked[T]{item: item, distanceKm: d})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].distanceKm < hits[b].distanceKm })

	out := make([]T, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.item)
	}
	return slices.Clip(out)
}
