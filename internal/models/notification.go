package models

import "gorm.io/gorm"

// Notification types form a fixed vocabulary consumed by the client inbox.
const (
	NotificationTypeRideRequest      = "ride_request"
	NotificationTypeRideAccepted     = "ride_accepted"
	NotificationTypeRideDeclined     = "ride_declined"
	NotificationTypeRideStarted      = "ride_started"
	NotificationTypeRideCompleted    = "ride_completed"
	NotificationTypeRideCancelled    = "ride_cancelled"
	NotificationTypeBookingCancelled = "booking_cancelled"
)

// Notification is an append-only inbox record keyed by recipient. The core
// writes these but never reads them back; only the inbox endpoints do.
type Notification struct {
	gorm.Model
	RecipientID uint   `json:"recipientId" gorm:"not null;index"`
	Recipient   User   `json:"-"`
	Type        string `json:"type" gorm:"not null"`
	Title       string `json:"title" gorm:"not null"`
	Message     string `json:"message"`
	Data        string `json:"data" gorm:"type:jsonb"`
	Read        bool   `json:"read" gorm:"default:false;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
