package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

type DirectBookInput struct {
	RideID uint `json:"rideId" binding:"required"`
}

// CreateBooking books a seat directly, skipping the request flow.
func CreateBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input DirectBookInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := services.DirectBook(db, notifier, input.RideID, userId)
		if err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(201, gin.H{"message": "Seat booked", "booking": booking})
	}
}

// GetMyBookings lists the rider's bookings, newest first.
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		query := db.Where("rider_id = ?", userId)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var bookings []models.Booking
		if result := query.Order("created_at DESC").Find(&bookings); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// GetRideBookings lists bookings on one of the driver's rides.
func GetRideBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var ride models.Ride
		if result := db.First(&ride, rideId); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.DriverID != userId {
			c.JSON(403, gin.H{"error": "You are not the driver of this ride"})
			return
		}

		var bookings []models.Booking
		if result := db.Where("ride_id = ?", ride.ID).
			Order("created_at ASC").Find(&bookings); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// CancelBooking releases a seat before the ride starts. Both the rider
// and the driver may cancel.
func CancelBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		bookingId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		if err := services.CancelBooking(db, notifier, uint(bookingId), userId); err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Booking cancelled"})
	}
}
