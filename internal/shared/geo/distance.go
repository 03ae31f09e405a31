package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

func toRadians(degree float64) float64 {
	return degree * math.Pi / 180
}

// Distance returns the great-circle distance between two coordinates in
// meters, computed with the haversine formula. This is the single distance
// function behind both the arrival geofence and the safety deviation check.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Bearing returns the initial bearing (forward azimuth) from point 1 to
// point 2 in degrees, normalized to [0, 360) where 0 is north.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)

	phi1 := p1.Lat.Radians()
	phi2 := p2.Lat.Radians()
	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(lonDiff)
	bearing := math.Atan2(y, x)

	return math.Mod(bearing*180/math.Pi+360, 360)
}

// DestinationPoint returns the coordinate reached by travelling distanceM
// meters from (lat, lon) along the given initial bearing in degrees.
func DestinationPoint(lat, lon, bearingDeg, distanceM float64) (float64, float64) {
	p := s2.LatLngFromDegrees(lat, lon)
	bearingRad := toRadians(bearingDeg)
	angular := distanceM / EarthRadiusMeters

	phi1 := p.Lat.Radians()
	lambda1 := p.Lng.Radians()

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(angular) +
		math.Cos(phi1)*math.Sin(angular)*math.Cos(bearingRad))

	lambda2 := lambda1 + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angular)*math.Cos(phi1),
		math.Cos(angular)-math.Sin(phi1)*math.Sin(phi2))

	return phi2 * 180 / math.Pi, lambda2 * 180 / math.Pi
}

var compassPoints = []string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

// CompassDirection maps a bearing in degrees to an 8-wind compass name,
// suitable for human-readable alerts.
func CompassDirection(bearingDeg float64) string {
	idx := int(math.Mod(bearingDeg+22.5, 360) / 45)
	return compassPoints[idx]
}
