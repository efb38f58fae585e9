package utils

import (
	"math"
	"testing"
)

func TestCalculateBoundDirections(t *testing.T) {
	origin := Point{Lat: 37.5665, Lon: 126.9780} // Seoul

	northEast := CalculateBound(origin, 5, 45.0)
	if northEast.Lat <= origin.Lat || northEast.Lon <= origin.Lon {
		t.Fatalf("bearing 45 should move north-east: got %+v from %+v", northEast, origin)
	}

	southWest := CalculateBound(origin, 5, 225.0)
	if southWest.Lat >= origin.Lat || southWest.Lon >= origin.Lon {
		t.Fatalf("bearing 225 should move south-west: got %+v from %+v", southWest, origin)
	}
}

func TestCalculateBoundDistance(t *testing.T) {
	origin := Point{Lat: 37.5665, Lon: 126.9780}
	dest := CalculateBound(origin, 10, 45.0)

	// Haversine back-check: the destination should sit ~10km away.
	got := haversineKm(origin, dest)
	if math.Abs(got-10) > 0.1 {
		t.Fatalf("expected ~10km displacement, got %.3fkm", got)
	}
}

func TestCalculateBoundZeroDistance(t *testing.T) {
	origin := Point{Lat: -33.86, Lon: 151.21}
	dest := CalculateBound(origin, 0, 45.0)
	if math.Abs(dest.Lat-origin.Lat) > 1e-9 || math.Abs(dest.Lon-origin.Lon) > 1e-9 {
		t.Fatalf("zero distance should not move the point: got %+v", dest)
	}
}

func haversineKm(a, b Point) float64 {
	latA, lonA := degToRad(a.Lat), degToRad(a.Lon)
	latB, lonB := degToRad(b.Lat), degToRad(b.Lon)
	dLat := latB - latA
	dLon := lonB - lonA
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
