package models

import "gorm.io/gorm"

// Rating is append-only: written once per (booking, rater) pair and never
// updated. The composite unique index backs the pre-insert check against
// concurrent double submission.
type Rating struct {
	gorm.Model
	BookingID   uint    `json:"bookingId" gorm:"not null;uniqueIndex:idx_booking_rater"`
	Booking     Booking `json:"-"`
	RaterID     uint    `json:"raterId" gorm:"not null;uniqueIndex:idx_booking_rater"`
	RatedUserID uint    `json:"ratedUserId" gorm:"not null;index"`
	Stars       int     `json:"stars" gorm:"not null"`
	Comment     string  `json:"comment"`
}

func (Rating) TableName() string {
	return "ratings"
}
