package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

type SubmitRequestInput struct {
	RideID         uint    `json:"rideId" binding:"required"`
	PickupLocation string  `json:"pickupLocation"`
	PickupLat      float64 `json:"pickupLat"`
	PickupLng      float64 `json:"pickupLng"`
	Message        string  `json:"message"`
}

// SubmitRequest lets a rider ask to join a ride. The seat is only held
// once the driver accepts.
func SubmitRequest(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input SubmitRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		request, err := services.SubmitRequest(db, notifier, userId, services.SubmitRequestInput{
			RideID:         input.RideID,
			PickupLocation: input.PickupLocation,
			PickupLat:      input.PickupLat,
			PickupLng:      input.PickupLng,
			Message:        input.Message,
		})
		if err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(201, gin.H{"message": "Request submitted", "request": request})
	}
}

// GetRideRequests lists pending requests for one of the driver's rides.
func GetRideRequests(db *gorm.DB) gin.HandlerFunc {
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

		var requests []models.RideRequest
		if result := db.Where("ride_id = ? AND status = ?", ride.ID, models.RequestStatusPending).
			Order("created_at ASC").Find(&requests); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch requests"})
			return
		}

		c.JSON(200, gin.H{"requests": requests})
	}
}

// GetMyRequests lists the rider's own requests across rides.
func GetMyRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var requests []models.RideRequest
		if result := db.Where("rider_id = ?", userId).
			Order("created_at DESC").Find(&requests); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch requests"})
			return
		}

		c.JSON(200, gin.H{"requests": requests})
	}
}

// AcceptRequest converts a pending request into a booking.
func AcceptRequest(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		requestId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid request ID"})
			return
		}

		booking, err := services.AcceptRequest(db, notifier, uint(requestId), userId)
		if err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Request accepted", "booking": booking})
	}
}

// DeclineRequest rejects a pending request.
func DeclineRequest(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		requestId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid request ID"})
			return
		}

		if err := services.DeclineRequest(db, notifier, uint(requestId), userId); err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Request declined"})
	}
}
