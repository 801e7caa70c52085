package utils

import (
	"math"
	"testing"
)

func TestEstimateSeatCost(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		want       float64
	}{
		{"negative distance clamps to minimum", -3, 0.5},
		{"zero distance", 0, 0.5},
		{"short hop gets minimum fare", 1.5, 0.5},
		{"at the minimum fare threshold", 2.0, 0.5},
		{"just past the threshold", 2.5, 0.55},
		{"campus to city", 8, 1.1},
		{"long ride", 25, 2.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateSeatCost(tt.distanceKm)
			if math.Abs(got.Total-tt.want) > 1e-9 {
				t.Errorf("EstimateSeatCost(%v).Total = %v, want %v", tt.distanceKm, got.Total, tt.want)
			}
			if math.Abs(got.Breakdown.Total-got.Total) > 1e-9 {
				t.Errorf("breakdown total %v disagrees with total %v", got.Breakdown.Total, got.Total)
			}
		})
	}
}

func TestEstimateSeatCostRounding(t *testing.T) {
	// 3.333 km -> 0.300 + 0.3333 = 0.6333, rounded to fils
	got := EstimateSeatCost(3.333)
	if math.Abs(got.Total-0.633) > 1e-9 {
		t.Errorf("Total = %v, want 0.633", got.Total)
	}
}
