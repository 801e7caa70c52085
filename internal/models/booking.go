package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusScheduled  BookingStatus = "scheduled"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusScheduled:  {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// LiveBookingStatuses are the statuses that hold a seat. At most one live
// booking may exist per (ride, rider) pair.
var LiveBookingStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusScheduled,
	BookingStatusInProgress,
}

type Booking struct {
	gorm.Model
	RideID     uint   `json:"rideId" gorm:"not null;index"`
	Ride       Ride   `json:"-"`
	RiderID    uint   `json:"riderId" gorm:"not null;index"`
	Rider      User   `json:"-"`
	RiderName  string `json:"riderName"`
	DriverID   uint   `json:"driverId" gorm:"not null;index"`
	DriverName string `json:"driverName"`

	// Pickup/destination and cost are snapshots taken at booking time.
	// Cost is fixed here, never re-split when the ride completes.
	PickupLocation string  `json:"pickupLocation"`
	Destination    string  `json:"destination"`
	EstimatedCost  float64 `json:"estimatedCost"`

	Status      BookingStatus `json:"status" gorm:"not null;index"`
	CompletedAt *time.Time    `json:"completedAt"`

	// One rating per party per booking. Rated covers the rider's rating of
	// the driver, DriverRated the reverse.
	Rated       bool `json:"rated" gorm:"default:false"`
	DriverRated bool `json:"driverRated" gorm:"default:false"`
}

func (Booking) TableName() string {
	return "bookings"
}
