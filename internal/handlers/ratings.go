package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

type SubmitRatingInput struct {
	BookingID   uint   `json:"bookingId" binding:"required"`
	RatedUserID uint   `json:"ratedUserId" binding:"required"`
	Stars       int    `json:"stars" binding:"required"`
	Comment     string `json:"comment"`
}

// SubmitRating records a rating for a completed booking.
func SubmitRating(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input SubmitRatingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		average, err := services.SubmitRating(db, userId, services.SubmitRatingInput{
			BookingID:   input.BookingID,
			RatedUserID: input.RatedUserID,
			Stars:       input.Stars,
			Comment:     input.Comment,
		})
		if err != nil {
			serviceError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"message":       "Rating submitted",
			"averageRating": average,
		})
	}
}

// GetUserRatings lists ratings received by a user.
func GetUserRatings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid user ID"})
			return
		}

		var user models.User
		if result := db.First(&user, targetId); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		var ratings []models.Rating
		if result := db.Where("rated_user_id = ?", user.ID).
			Order("created_at DESC").Limit(50).Find(&ratings); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ratings"})
			return
		}

		c.JSON(200, gin.H{
			"averageRating": user.AverageRating,
			"totalRatings":  user.TotalRatings,
			"ratings":       ratings,
		})
	}
}
