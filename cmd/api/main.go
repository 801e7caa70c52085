package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/database"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/handlers"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/middleware"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Firebase is optional, rides work without push delivery
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	hub := services.NewHub()
	go hub.Run()

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored uploads when S3 is not configured
	r.Static("/uploads", "/app/uploads")

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/verify-email", handlers.VerifyEmail(db))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(db))
			auth.POST("/verify-otp", handlers.VerifyOTP(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/profile/photo", handlers.UploadProfilePhoto(db))
				users.GET("/:id", handlers.GetUser(db))
				users.GET("/:id/ratings", handlers.GetUserRatings(db))
			}

			vehicles := protected.Group("/vehicles")
			{
				vehicles.POST("", handlers.CreateVehicle(db))
				vehicles.GET("", handlers.GetMyVehicles(db))
				vehicles.PUT("/:id", handlers.UpdateVehicle(db))
				vehicles.DELETE("/:id", handlers.DeleteVehicle(db))
				vehicles.POST("/:id/photo", handlers.UploadVehiclePhoto(db))
			}

			rides := protected.Group("/rides")
			{
				rides.POST("", handlers.CreateRide(db))
				rides.GET("", handlers.SearchRides(db))
				rides.GET("/mine", handlers.GetMyRides(db))
				rides.GET("/estimate", handlers.EstimateCost())
				rides.GET("/:id", handlers.GetRide(db))
				rides.POST("/:id/start", handlers.StartRide(db, hub))
				rides.POST("/:id/complete", handlers.CompleteRide(db, hub))
				rides.POST("/:id/cancel", handlers.CancelRide(db, hub))
				rides.GET("/:id/requests", handlers.GetRideRequests(db))
				rides.GET("/:id/bookings", handlers.GetRideBookings(db))
			}

			requests := protected.Group("/requests")
			{
				requests.POST("", handlers.SubmitRequest(db, hub))
				requests.GET("/mine", handlers.GetMyRequests(db))
				requests.POST("/:id/accept", handlers.AcceptRequest(db, hub))
				requests.POST("/:id/decline", handlers.DeclineRequest(db, hub))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(db, hub))
				bookings.GET("/mine", handlers.GetMyBookings(db))
				bookings.POST("/:id/cancel", handlers.CancelBooking(db, hub))
			}

			ratings := protected.Group("/ratings")
			{
				ratings.POST("", handlers.SubmitRating(db))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.GetNotifications(db))
				notifications.GET("/unread-count", handlers.GetUnreadCount(db))
				notifications.POST("/:id/read", handlers.MarkNotificationRead(db))
				notifications.POST("/read-all", handlers.MarkAllNotificationsRead(db))
				notifications.POST("/register-token", handlers.RegisterFCMToken(db))
				notifications.DELETE("/remove-token", handlers.RemoveFCMToken(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
