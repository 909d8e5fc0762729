// Package kernel holds the value objects every other domain package builds on:
// UUID identifiers and GeoPoint coordinates, plus the great-circle helpers
// (distance, radius containment, bearing, bounding box) used by matching and
// zone tracking. All distances use a spherical Earth of radius EarthRadiusKm.
package kernel
