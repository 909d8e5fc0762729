// Package catalogindex serves "candidates within R of P" queries over each
// region's vendors and destinations. Datasets come from a ports.CatalogSource
// as GeoJSON and are parsed once per region; queries filter by bounding box,
// then by exact great-circle distance, and sort nearest first.
package catalogindex
