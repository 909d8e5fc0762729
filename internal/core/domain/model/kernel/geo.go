package kernel

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius every distance in the game is measured with.
const EarthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between two lat/lon pairs in degrees.
// NaN inputs yield NaN.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func DistanceKm(a, b GeoPoint) float64 {
	return HaversineKm(a.latitude, a.longitude, b.latitude, b.longitude)
}

func DistanceMeters(a, b GeoPoint) float64 {
	return DistanceKm(a, b) * 1000
}

// IsWithinRadius reports distance(center, point) <= radiusMeters, boundary inclusive.
func IsWithinRadius(center, point GeoPoint, radiusMeters float64) bool {
	return DistanceMeters(center, point) <= radiusMeters
}

// BearingDegrees is the initial great-circle bearing from a to b in [0, 360).
func BearingDegrees(a, b GeoPoint) float64 {
	phi1 := toRadians(a.latitude)
	phi2 := toRadians(b.latitude)
	dLambda := toRadians(b.longitude - a.longitude)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	bearing := math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
	if bearing >= 360 {
		return 0
	}
	return bearing
}

// BoundingBox returns a lon/lat box that contains every point within radiusKm
// of center. It is a cheap pre-filter; callers still confirm with DistanceKm.
// Boxes touching a pole or the antimeridian widen to the full longitude range.
func BoundingBox(center GeoPoint, radiusKm float64) orb.Bound {
	dLat := toDegrees(radiusKm / EarthRadiusKm)
	minLat := math.Max(center.latitude-dLat, MinLatitude)
	maxLat := math.Min(center.latitude+dLat, MaxLatitude)

	minLon, maxLon := MinLongitude, MaxLongitude
	if minLat > MinLatitude && maxLat < MaxLatitude {
		dLon := toDegrees(math.Asin(math.Min(1, math.Sin(radiusKm/EarthRadiusKm)/math.Cos(toRadians(center.latitude)))))
		if center.longitude-dLon >= MinLongitude && center.longitude+dLon <= MaxLongitude {
			minLon = center.longitude - dLon
			maxLon = center.longitude + dLon
		}
	}

	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
}

// Offset returns the point distanceKm away from p along the initial bearing.
// It is the inverse of DistanceKm and BearingDegrees on the same sphere.
func Offset(p GeoPoint, bearingDeg, distanceKm float64) (GeoPoint, error) {
	delta := distanceKm / EarthRadiusKm
	theta := toRadians(bearingDeg)
	phi1 := toRadians(p.latitude)
	lambda1 := toRadians(p.longitude)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(phi1), math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	lon := math.Mod(toDegrees(lambda2)+540, 360) - 180
	return NewGeoPoint(toDegrees(phi2), lon)
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// CompassDirection maps a bearing to one of 16 compass points, 22.5 degrees each.
func CompassDirection(bearing float64) string {
	normalized := math.Mod(math.Mod(bearing, 360)+360, 360)
	return compassPoints[int(math.Round(normalized/22.5))%len(compassPoints)]
}

// AccuracyConfidence grades a reported horizontal GPS accuracy in meters.
func AccuracyConfidence(accuracyM float64) string {
	switch {
	case accuracyM <= 5:
		return "excellent"
	case accuracyM <= 15:
		return "good"
	case accuracyM <= 50:
		return "fair"
	default:
		return "poor"
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
