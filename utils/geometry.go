package utils

import "math"

const earthRadiusKm = 6371.01

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// CalculateBound returns the point reached by travelling distanceKm from
// the origin along the given bearing (degrees, clockwise from north).
// Used with bearings 45 and 225 to build the northeast/southwest corners
// of a rectangular search box. The box is a pre-filter, not exact
// geodesic distance.
func CalculateBound(origin Point, distanceKm, bearingDeg float64) Point {
	latRad := degToRad(origin.Lat)
	lonRad := degToRad(origin.Lon)
	bearing := degToRad(bearingDeg)
	angular := distanceKm / earthRadiusKm

	destLat := math.Asin(
		math.Sin(latRad)*math.Cos(angular) +
			math.Cos(latRad)*math.Sin(angular)*math.Cos(bearing),
	)
	destLon := lonRad + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(latRad),
		math.Cos(angular)-math.Sin(latRad)*math.Sin(destLat),
	)

	// normalize to [-180, 180)
	destLon = math.Mod(destLon+3*math.Pi, 2*math.Pi) - math.Pi

	return Point{Lat: radToDeg(destLat), Lon: radToDeg(destLon)}
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
func radToDeg(r float64) float64 { return r * 180 / math.Pi }
