package models

import "gorm.io/gorm"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusDeclined RequestStatus = "declined"
)

// A request is terminal once accepted or declined; no further mutation.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusDeclined
}

type RideRequest struct {
	gorm.Model
	RideID    uint   `json:"rideId" gorm:"not null;index"`
	Ride      Ride   `json:"-"`
	RiderID   uint   `json:"riderId" gorm:"not null;index"`
	Rider     User   `json:"-"`
	RiderName string `json:"riderName"`

	PickupLocation string  `json:"pickupLocation"`
	PickupLat      float64 `json:"pickupLat"`
	PickupLng      float64 `json:"pickupLng"`
	Message        string  `json:"message"`

	Status RequestStatus `json:"status" gorm:"not null;index;default:'pending'"`
}

func (RideRequest) TableName() string {
	return "ride_requests"
}
