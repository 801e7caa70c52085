package utils

import (
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	// Sakhir campus to Manama, roughly 22 km
	d := HaversineDistance(26.0469, 50.5126, 26.2285, 50.5860)
	if d < 21 || d > 23 {
		t.Errorf("campus to Manama = %v km, want around 22", d)
	}

	if d := HaversineDistance(26.0469, 50.5126, 26.0469, 50.5126); d != 0 {
		t.Errorf("same point distance = %v, want 0", d)
	}
}

func TestIsWithinRadius(t *testing.T) {
	if !IsWithinRadius(26.0469, 50.5126, 26.0500, 50.5150, 1.0) {
		t.Error("nearby point should be within 1 km")
	}
	if IsWithinRadius(26.0469, 50.5126, 26.2285, 50.5860, 5.0) {
		t.Error("Manama should not be within 5 km of campus")
	}
}

func TestCalculateETA(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		speedKmh   float64
		want       int
	}{
		{"default speed", 15, 0, 30},
		{"explicit speed", 60, 60, 60},
		{"minimum one minute", 0.1, 60, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateETA(tt.distanceKm, tt.speedKmh); got != tt.want {
				t.Errorf("CalculateETA(%v, %v) = %v, want %v", tt.distanceKm, tt.speedKmh, got, tt.want)
			}
		})
	}
}

func TestGetBoundingBox(t *testing.T) {
	bbox := GetBoundingBox(26.0469, 50.5126, 5)

	if bbox.NorthEast.Lat <= 26.0469 || bbox.SouthWest.Lat >= 26.0469 {
		t.Error("box must bracket the center latitude")
	}
	if bbox.NorthEast.Lng <= 50.5126 || bbox.SouthWest.Lng >= 50.5126 {
		t.Error("box must bracket the center longitude")
	}

	// A point inside the radius falls inside the box
	inside := Point{Lat: 26.08, Lng: 50.52}
	if inside.Lat > bbox.NorthEast.Lat || inside.Lat < bbox.SouthWest.Lat ||
		inside.Lng > bbox.NorthEast.Lng || inside.Lng < bbox.SouthWest.Lng {
		t.Error("point within the radius should sit inside the bounding box")
	}
}
