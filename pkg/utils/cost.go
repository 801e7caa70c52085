package utils

import (
	"math"
)

// CostEstimate is the suggested per-seat contribution for a ride,
// with its breakdown. All amounts are in BHD.
type CostEstimate struct {
	Total       float64       `json:"total"`
	DistanceKm  float64       `json:"distanceKm"`
	RatePerKm   float64       `json:"ratePerKm"`
	MinimumFare float64       `json:"minimumFare"`
	Breakdown   CostBreakdown `json:"breakdown"`
}

// CostBreakdown itemizes the estimate.
type CostBreakdown struct {
	BaseFare     float64 `json:"baseFare"`
	DistanceFare float64 `json:"distanceFare"`
	Total        float64 `json:"total"`
}

const (
	// Per-seat rates in BHD. Campus rides are cost sharing, not
	// commercial fares, so the numbers stay low.
	BaseFare            = 0.300
	RatePerKm           = 0.100
	MinimumSeatCost     = 0.500
	MinimumFareDistance = 2.0
)

// EstimateSeatCost suggests a per-seat contribution for a ride of the
// given length. Short hops get the flat minimum.
func EstimateSeatCost(distanceKm float64) CostEstimate {
	if distanceKm < 0 {
		distanceKm = 0
	}

	var total, baseFare, distanceFare float64
	if distanceKm <= MinimumFareDistance {
		total = MinimumSeatCost
		baseFare = MinimumSeatCost
	} else {
		baseFare = BaseFare
		distanceFare = distanceKm * RatePerKm
		total = baseFare + distanceFare
		if total < MinimumSeatCost {
			total = MinimumSeatCost
		}
	}

	total = math.Round(total*1000) / 1000

	return CostEstimate{
		Total:       total,
		DistanceKm:  math.Round(distanceKm*100) / 100,
		RatePerKm:   RatePerKm,
		MinimumFare: MinimumSeatCost,
		Breakdown: CostBreakdown{
			BaseFare:     baseFare,
			DistanceFare: math.Round(distanceFare*1000) / 1000,
			Total:        total,
		},
	}
}
