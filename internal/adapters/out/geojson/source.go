// Package geojson serves region catalogs from a directory tree:
//
//	{dir}/cities_config.json
//	{dir}/{region}/restaurants.geojson
//	{dir}/{region}/buildings.geojson
//
// cities_config.json is optional; without it every subdirectory is a region.
package geojson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"

	"github.com/paulmach/orb/geojson"
)

const (
	CitiesConfigFile = "cities_config.json"
	VendorsFile      = "restaurants.geojson"
	DestinationsFile = "buildings.geojson"
)

type Center struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// City is one entry of cities_config.json.
type City struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Active bool    `json:"active"`
	Center *Center `json:"center,omitempty"`
}

type citiesConfig struct {
	Cities []City `json:"cities"`
}

// FileSource implements ports.CatalogSource over a local directory. Files are
// read on every call; caching belongs to the catalog index.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Vendors(ctx context.Context, regionID string) (*geojson.FeatureCollection, error) {
	return s.read(ctx, regionID, VendorsFile)
}

func (s *FileSource) Destinations(ctx context.Context, regionID string) (*geojson.FeatureCollection, error) {
	return s.read(ctx, regionID, DestinationsFile)
}

// Regions lists active cities from cities_config.json, or every region
// directory when there is no config.
func (s *FileSource) Regions(ctx context.Context) ([]string, error) {
	cities, err := s.Cities(ctx)
	if err == nil {
		ids := make([]string, 0, len(cities))
		for _, c := range cities {
			if c.Active {
				ids = append(ids, c.ID)
			}
		}
		return ids, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list catalog dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Cities returns every entry of cities_config.json, active or not.
func (s *FileSource) Cities(ctx context.Context) ([]City, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, CitiesConfigFile))
	if err != nil {
		return nil, err
	}
	var cfg citiesConfig
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", CitiesConfigFile, err)
	}
	return cfg.Cities, nil
}

// NearestRegion picks the active city whose center is closest to p. It fails
// with ports.ErrRegionNotFound when no city has a center or there is no
// cities config at all.
func (s *FileSource) NearestRegion(ctx context.Context, p kernel.GeoPoint) (string, error) {
	cities, err := s.Cities(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: no %s", ports.ErrRegionNotFound, CitiesConfigFile)
	}
	if err != nil {
		return "", err
	}

	nearest, best := "", math.Inf(1)
	for _, c := range cities {
		if !c.Active || c.Center == nil {
			continue
		}
		d := kernel.HaversineKm(p.Latitude(), p.Longitude(), c.Center.Lat, c.Center.Lng)
		if d < best {
			nearest, best = c.ID, d
		}
	}
	if nearest == "" {
		return "", ports.ErrRegionNotFound
	}
	return nearest, nil
}

func (s *FileSource) read(ctx context.Context, regionID, file string) (*geojson.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validRegionID(regionID) {
		return nil, fmt.Errorf("%w: %q", ports.ErrRegionNotFound, regionID)
	}

	path := filepath.Join(s.dir, regionID, file)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ports.ErrRegionNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

func validRegionID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
