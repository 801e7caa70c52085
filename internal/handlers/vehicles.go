package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

type VehicleInput struct {
	Name        string `json:"name" binding:"required"`
	CarModel    string `json:"carModel"`
	Color       string `json:"color"`
	PlateNumber string `json:"plateNumber" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=1,max=8"`
}

func CreateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input VehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		vehicle := models.Vehicle{
			OwnerID:     userId,
			Name:        input.Name,
			CarModel:    input.CarModel,
			Color:       input.Color,
			PlateNumber: input.PlateNumber,
			Capacity:    input.Capacity,
		}

		if result := db.Create(&vehicle); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create vehicle: " + result.Error.Error()})
			return
		}

		c.JSON(201, gin.H{"message": "Vehicle registered", "vehicle": vehicle})
	}
}

func GetMyVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var vehicles []models.Vehicle
		if result := db.Where("owner_id = ?", userId).Find(&vehicles); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(200, gin.H{"vehicles": vehicles})
	}
}

func UpdateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, vehicleId); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.OwnerID != userId {
			c.JSON(403, gin.H{"error": "You do not own this vehicle"})
			return
		}

		var input VehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		vehicle.Name = input.Name
		vehicle.CarModel = input.CarModel
		vehicle.Color = input.Color
		vehicle.PlateNumber = input.PlateNumber
		vehicle.Capacity = input.Capacity

		if result := db.Save(&vehicle); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update vehicle"})
			return
		}

		c.JSON(200, gin.H{"message": "Vehicle updated", "vehicle": vehicle})
	}
}

// DeleteVehicle removes a vehicle unless it is attached to an open ride.
func DeleteVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, vehicleId); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.OwnerID != userId {
			c.JSON(403, gin.H{"error": "You do not own this vehicle"})
			return
		}

		var openRides int64
		if err := db.Model(&models.Ride{}).
			Where("vehicle_id = ? AND status IN ?", vehicle.ID, models.OpenRideStatuses).
			Count(&openRides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to check vehicle usage"})
			return
		}
		if openRides > 0 {
			serviceError(c, services.ErrVehicleInUse)
			return
		}

		if result := db.Delete(&vehicle); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to delete vehicle"})
			return
		}

		c.JSON(200, gin.H{"message": "Vehicle deleted"})
	}
}

// UploadVehiclePhoto stores a photo for one of the user's vehicles.
func UploadVehiclePhoto(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, vehicleId); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.OwnerID != userId {
			c.JSON(403, gin.H{"error": "You do not own this vehicle"})
			return
		}

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"error": "Photo file is required"})
			return
		}

		path, err := services.UploadImage(file, "vehicles")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload photo: " + err.Error()})
			return
		}

		vehicle.PhotoURL = services.GetImageURL(path)
		if result := db.Save(&vehicle); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to save photo"})
			return
		}

		c.JSON(200, gin.H{"message": "Photo uploaded", "photoUrl": vehicle.PhotoURL})
	}
}
