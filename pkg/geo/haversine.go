package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for Haversine.
const EarthRadiusMeters = 6371000.0

// Coordinate is a lat/lng pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the great-circle distance in meters between two
// points (lat/lng in degrees).
func DistanceMeters(a, b Coordinate) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(a.Latitude), rad(b.Latitude)
	Δφ := rad(b.Latitude - a.Latitude)
	Δλ := rad(b.Longitude - a.Longitude)
	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}
