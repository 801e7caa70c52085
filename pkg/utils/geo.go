package utils

import (
	"math"
)

// HaversineDistance calculates the great-circle distance between two
// points. Returns distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371

	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// IsWithinRadius reports whether a point falls within radiusKm of a center.
func IsWithinRadius(centerLat, centerLng, pointLat, pointLng, radiusKm float64) bool {
	return HaversineDistance(centerLat, centerLng, pointLat, pointLng) <= radiusKm
}

// CalculateETA estimates minutes to arrival for a distance at an average
// speed. Never returns less than one minute.
func CalculateETA(distanceKm, averageSpeedKmh float64) int {
	if averageSpeedKmh <= 0 {
		averageSpeedKmh = 30
	}

	etaMinutes := int(distanceKm / averageSpeedKmh * 60)
	if etaMinutes < 1 {
		etaMinutes = 1
	}

	return etaMinutes
}

// Point is a geographical coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is a rectangular search area.
type BoundingBox struct {
	NorthEast Point `json:"northEast"`
	SouthWest Point `json:"southWest"`
}

// GetBoundingBox builds a box around a center point. Ride search uses it
// as a cheap prefilter before the exact Haversine check.
func GetBoundingBox(centerLat, centerLng, radiusKm float64) BoundingBox {
	const earthRadius = 6371

	angularDistance := radiusKm / earthRadius

	latDelta := angularDistance * 180 / math.Pi
	lngDelta := angularDistance * 180 / math.Pi / math.Cos(centerLat*math.Pi/180)

	return BoundingBox{
		NorthEast: Point{Lat: centerLat + latDelta, Lng: centerLng + lngDelta},
		SouthWest: Point{Lat: centerLat - latDelta, Lng: centerLng - lngDelta},
	}
}
