package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/pkg/utils"
)

type CreateRideInput struct {
	VehicleID      uint       `json:"vehicleId" binding:"required"`
	PickupLocation string     `json:"pickupLocation" binding:"required"`
	PickupLat      float64    `json:"pickupLat"`
	PickupLng      float64    `json:"pickupLng"`
	Destination    string     `json:"destination" binding:"required"`
	DestLat        float64    `json:"destLat"`
	DestLng        float64    `json:"destLng"`
	RoutePolyline  string     `json:"routePolyline"`
	DistanceKm     float64    `json:"distanceKm"`
	DurationMin    int        `json:"durationMin"`
	IsScheduled    bool       `json:"isScheduled"`
	ScheduledTime  *time.Time `json:"scheduledTime"`
	TotalSeats     int        `json:"totalSeats" binding:"required,min=1"`
	IsFree         bool       `json:"isFree"`
	EstimatedCost  float64    `json:"estimatedCost"`
	IsFemaleOnly   bool       `json:"isFemaleOnly"`
}

func CreateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input CreateRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.DistanceKm == 0 && input.PickupLat != 0 && input.DestLat != 0 {
			input.DistanceKm = utils.HaversineDistance(
				input.PickupLat, input.PickupLng, input.DestLat, input.DestLng)
		}
		if input.DurationMin == 0 && input.DistanceKm > 0 {
			input.DurationMin = utils.CalculateETA(input.DistanceKm, 0)
		}

		ride, err := services.CreateRide(db, userId, services.CreateRideInput{
			VehicleID:      input.VehicleID,
			PickupLocation: input.PickupLocation,
			PickupLat:      input.PickupLat,
			PickupLng:      input.PickupLng,
			Destination:    input.Destination,
			DestLat:        input.DestLat,
			DestLng:        input.DestLng,
			RoutePolyline:  input.RoutePolyline,
			DistanceKm:     input.DistanceKm,
			DurationMin:    input.DurationMin,
			IsScheduled:    input.IsScheduled,
			ScheduledTime:  input.ScheduledTime,
			TotalSeats:     input.TotalSeats,
			IsFree:         input.IsFree,
			EstimatedCost:  input.EstimatedCost,
			IsFemaleOnly:   input.IsFemaleOnly,
		})
		if err != nil {
			serviceError(c, err)
			return
		}

		services.PublishRideUpdate(c.Request.Context(), ride.ID, string(ride.Status), map[string]interface{}{
			"destination":    ride.Destination,
			"availableSeats": ride.AvailableSeats,
		})

		c.JSON(201, gin.H{"message": "Ride created successfully", "ride": ride})
	}
}

// SearchRides returns open rides matching the query. When coordinates are
// supplied the results are prefiltered by bounding box and then checked
// with the exact distance.
func SearchRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		query := db.Preload("Driver").
			Where("status IN ?", models.OpenRideStatuses).
			Where("available_seats > 0").
			Where("driver_id <> ?", userId)

		if destination := c.Query("destination"); destination != "" {
			query = query.Where("destination ILIKE ?", "%"+destination+"%")
		}
		if c.Query("freeOnly") == "true" {
			query = query.Where("is_free = ?", true)
		}
		if c.Query("femaleOnly") == "true" {
			query = query.Where("is_female_only = ?", true)
		}
		if gender := c.GetString("gender"); gender != string(models.GenderFemale) {
			// Male students never see female-only rides
			query = query.Where("is_female_only = ?", false)
		}
		if seats, err := strconv.Atoi(c.Query("seats")); err == nil && seats > 1 {
			query = query.Where("available_seats >= ?", seats)
		}

		lat, latErr := strconv.ParseFloat(c.Query("pickupLat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("pickupLng"), 64)
		radiusKm := 5.0
		if r, err := strconv.ParseFloat(c.Query("radiusKm"), 64); err == nil && r > 0 {
			radiusKm = r
		}
		hasOrigin := latErr == nil && lngErr == nil

		if hasOrigin {
			bbox := utils.GetBoundingBox(lat, lng, radiusKm)
			query = query.Where("pickup_lat BETWEEN ? AND ?", bbox.SouthWest.Lat, bbox.NorthEast.Lat).
				Where("pickup_lng BETWEEN ? AND ?", bbox.SouthWest.Lng, bbox.NorthEast.Lng)
		}

		var rides []models.Ride
		if result := query.Order("created_at DESC").Limit(100).Find(&rides); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to search rides"})
			return
		}

		if hasOrigin {
			filtered := rides[:0]
			for _, ride := range rides {
				if utils.IsWithinRadius(lat, lng, ride.PickupLat, ride.PickupLng, radiusKm) {
					filtered = append(filtered, ride)
				}
			}
			rides = filtered
		}

		c.JSON(200, gin.H{"rides": rides, "count": len(rides)})
	}
}

func GetRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var ride models.Ride
		if result := db.Preload("Driver").First(&ride, rideId); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		response := gin.H{"ride": ride}

		// The cached seat count is a hint for busy ride cards, the row
		// value stays authoritative
		if seats, err := services.GetCachedRideSeats(c.Request.Context(), ride.ID); err == nil {
			response["cachedSeats"] = seats
		}

		c.JSON(200, response)
	}
}

// GetMyRides lists the current user's rides as a driver.
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var rides []models.Ride
		if result := db.Where("driver_id = ?", userId).
			Order("created_at DESC").Find(&rides); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, gin.H{"rides": rides})
	}
}

func StartRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		if err := services.StartRide(db, notifier, uint(rideId), userId); err != nil {
			serviceError(c, err)
			return
		}

		services.PublishRideUpdate(c.Request.Context(), uint(rideId), string(models.RideStatusActive), nil)

		c.JSON(200, gin.H{"message": "Ride started"})
	}
}

func CompleteRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		summary, err := services.CompleteRide(db, notifier, uint(rideId), userId)
		if err != nil {
			serviceError(c, err)
			return
		}

		services.InvalidateRideSeats(c.Request.Context(), uint(rideId))
		services.PublishRideUpdate(c.Request.Context(), uint(rideId), string(models.RideStatusCompleted), nil)

		c.JSON(200, gin.H{
			"message":   "Ride completed",
			"riders":    summary.Riders,
			"totalCost": summary.TotalCost,
		})
	}
}

func CancelRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	notifier := services.NewNotifier(db, hub)
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		rideId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		if err := services.CancelRide(db, notifier, uint(rideId), userId); err != nil {
			serviceError(c, err)
			return
		}

		services.InvalidateRideSeats(c.Request.Context(), uint(rideId))
		services.PublishRideUpdate(c.Request.Context(), uint(rideId), string(models.RideStatusCancelled), nil)

		c.JSON(200, gin.H{"message": "Ride cancelled"})
	}
}

// EstimateCost suggests a per-seat contribution for a route before the
// ride is created.
func EstimateCost() gin.HandlerFunc {
	return func(c *gin.Context) {
		distanceKm, err := strconv.ParseFloat(c.Query("distanceKm"), 64)
		if err != nil {
			pickupLat, err1 := strconv.ParseFloat(c.Query("pickupLat"), 64)
			pickupLng, err2 := strconv.ParseFloat(c.Query("pickupLng"), 64)
			destLat, err3 := strconv.ParseFloat(c.Query("destLat"), 64)
			destLng, err4 := strconv.ParseFloat(c.Query("destLng"), 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				c.JSON(400, gin.H{"error": "Provide distanceKm or pickup and destination coordinates"})
				return
			}
			distanceKm = utils.HaversineDistance(pickupLat, pickupLng, destLat, destLng)
		}

		estimate := utils.EstimateSeatCost(distanceKm)
		c.JSON(200, gin.H{
			"estimate":   estimate,
			"etaMinutes": utils.CalculateETA(distanceKm, 0),
			"currency":   "BHD",
		})
	}
}
