// Package geo provides great-circle distance and point-in-circle checks on a sphere.
// All functions are pure; coordinates are WGS84 degrees, distances are meters.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for haversine distance.
const EarthRadiusMeters = 6371000.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is within WGS84 coordinate bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Distance returns the great-circle distance between a and b in meters,
// computed with the haversine formula. No projection approximation.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// WithinRadius reports whether p lies inside or on the disc centered at center
// with the given radius in meters.
func WithinRadius(center, p Point, radiusMeters float64) bool {
	return Distance(center, p) <= radiusMeters
}
