package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusScheduled RideStatus = "scheduled"
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// rideTransitions is the single source of truth for legal ride status
// changes. Callers must go through CanTransitionTo instead of comparing
// status strings at the call site.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusScheduled: {RideStatusActive, RideStatusCompleted, RideStatusCancelled},
	RideStatusActive:    {RideStatusCompleted, RideStatusCancelled},
}

func (s RideStatus) CanTransitionTo(to RideStatus) bool {
	for _, next := range rideTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// OpenRideStatuses are the non-terminal ride statuses. A driver may hold at
// most one ride in these statuses at a time.
var OpenRideStatuses = []RideStatus{RideStatusScheduled, RideStatusActive}

type Ride struct {
	gorm.Model
	DriverID uint `json:"driverId" gorm:"not null;index"`
	Driver   User `json:"driver"`

	// Vehicle reference plus a denormalized snapshot so ride cards render
	// without a join even if the vehicle is later edited.
	VehicleID    uint    `json:"vehicleId" gorm:"not null"`
	Vehicle      Vehicle `json:"-"`
	VehicleName  string  `json:"vehicleName"`
	VehicleModel string  `json:"vehicleModel"`
	VehicleColor string  `json:"vehicleColor"`
	VehiclePlate string  `json:"vehiclePlate"`

	PickupLocation string  `json:"pickupLocation" gorm:"not null"`
	PickupLat      float64 `json:"pickupLat"`
	PickupLng      float64 `json:"pickupLng"`
	Destination    string  `json:"destination" gorm:"not null"`
	DestLat        float64 `json:"destLat"`
	DestLng        float64 `json:"destLng"`

	RoutePolyline string  `json:"routePolyline"`
	DistanceKm    float64 `json:"distanceKm"`
	DurationMin   int     `json:"durationMin"`

	IsScheduled   bool       `json:"isScheduled"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	DepartureTime *time.Time `json:"departureTime"`
	StartedAt     *time.Time `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt"`

	// TotalSeats is immutable after creation. AvailableSeats is mutated
	// only through guarded UPDATEs in the booking broker.
	TotalSeats     int `json:"totalSeats" gorm:"not null"`
	AvailableSeats int `json:"availableSeats" gorm:"not null"`

	IsFree        bool    `json:"isFree"`
	EstimatedCost float64 `json:"estimatedCost"`
	IsFemaleOnly  bool    `json:"isFemaleOnly"`

	Status RideStatus `json:"status" gorm:"not null;index;default:'scheduled'"`
}

func (Ride) TableName() string {
	return "rides"
}
