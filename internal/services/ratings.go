package services

import (
	"errors"
	"math"
	"strings"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"gorm.io/gorm"
)

// isDuplicateRating reports whether err is the unique-index violation on
// (booking_id, rater_id). Matched by message because the database drivers
// are not configured with TranslateError.
func isDuplicateRating(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// SubmitRatingInput identifies one direction of a completed booking's
// rating pair: rider rates driver or driver rates rider.
type SubmitRatingInput struct {
	BookingID   uint
	RatedUserID uint
	Stars       int
	Comment     string
}

// SubmitRating records a rating for a completed booking and returns the
// rated user's refreshed average. The average is recomputed from the full
// rating set rather than adjusted incrementally, so a retried write can
// never drift the aggregate.
func SubmitRating(db *gorm.DB, raterID uint, in SubmitRatingInput) (float64, error) {
	if in.Stars < 1 || in.Stars > 5 {
		return 0, ErrInvalidStars
	}

	var booking models.Booking
	if err := db.First(&booking, in.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if raterID != booking.RiderID && raterID != booking.DriverID {
		return 0, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusCompleted {
		return 0, ErrNotCompleted
	}

	// The counterpart on this booking is the only valid target.
	var counterpart uint
	if raterID == booking.RiderID {
		counterpart = booking.DriverID
	} else {
		counterpart = booking.RiderID
	}
	if in.RatedUserID != counterpart {
		return 0, ErrWrongRatedUser
	}

	var existing int64
	if err := db.Model(&models.Rating{}).
		Where("booking_id = ? AND rater_id = ?", booking.ID, raterID).
		Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, ErrAlreadyRated
	}

	var average float64
	err := db.Transaction(func(tx *gorm.DB) error {
		rating := models.Rating{
			BookingID:   booking.ID,
			RaterID:     raterID,
			RatedUserID: in.RatedUserID,
			Stars:       in.Stars,
			Comment:     in.Comment,
		}
		if err := tx.Create(&rating).Error; err != nil {
			// A concurrent submit that slipped past the pre-check lands
			// on the unique index instead.
			if isDuplicateRating(err) {
				return ErrAlreadyRated
			}
			return err
		}

		var stars []int
		if err := tx.Model(&models.Rating{}).
			Where("rated_user_id = ?", in.RatedUserID).
			Pluck("stars", &stars).Error; err != nil {
			return err
		}
		sum := 0
		for _, s := range stars {
			sum += s
		}
		average = math.Round(float64(sum)/float64(len(stars))*100) / 100

		if err := tx.Model(&models.User{}).
			Where("id = ?", in.RatedUserID).
			Updates(map[string]interface{}{
				"average_rating": average,
				"total_ratings":  len(stars),
			}).Error; err != nil {
			return err
		}

		column := "rated"
		if raterID == booking.DriverID {
			column = "driver_rated"
		}
		return tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update(column, true).Error
	})
	if err != nil {
		return 0, err
	}

	return average, nil
}
