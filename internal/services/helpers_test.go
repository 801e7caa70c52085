package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
)

// setupTestDB opens a throwaway sqlite database backed by a temp file.
// A file, not :memory:, because gorm pools connections and each pooled
// connection would otherwise see its own empty in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "carpool.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Ride{},
		&models.RideRequest{},
		&models.Booking{},
		&models.Rating{},
		&models.Notification{},
		&models.OTP{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestNotifier(db *gorm.DB) *Notifier {
	return NewNotifier(db, nil)
}

func createUser(t *testing.T, db *gorm.DB, username string, gender models.Gender) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@university.edu.bh", username),
		PasswordHash: "x",
		Gender:       gender,
		IsVerified:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func createVehicle(t *testing.T, db *gorm.DB, owner *models.User, capacity int) *models.Vehicle {
	t.Helper()

	vehicle := models.Vehicle{
		OwnerID:     owner.ID,
		Name:        "Toyota",
		CarModel:    "Corolla",
		Color:       "White",
		PlateNumber: fmt.Sprintf("%s-%d", owner.Username, owner.ID),
		Capacity:    capacity,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	return &vehicle
}

// createRide posts an immediate ride through the real creation path.
func createRide(t *testing.T, db *gorm.DB, driver *models.User, vehicle *models.Vehicle, seats int, cost float64) *models.Ride {
	t.Helper()

	ride, err := CreateRide(db, driver.ID, CreateRideInput{
		VehicleID:      vehicle.ID,
		PickupLocation: "Engineering Building",
		Destination:    "Juffair",
		DistanceKm:     8,
		TotalSeats:     seats,
		EstimatedCost:  cost,
	})
	if err != nil {
		t.Fatalf("failed to create ride: %v", err)
	}
	return ride
}

// createScheduledRide posts a ride departing in two hours.
func createScheduledRide(t *testing.T, db *gorm.DB, driver *models.User, vehicle *models.Vehicle, seats int, cost float64) *models.Ride {
	t.Helper()

	departure := time.Now().Add(2 * time.Hour)
	ride, err := CreateRide(db, driver.ID, CreateRideInput{
		VehicleID:      vehicle.ID,
		PickupLocation: "Main Gate",
		Destination:    "Seef Mall",
		DistanceKm:     10,
		IsScheduled:    true,
		ScheduledTime:  &departure,
		TotalSeats:     seats,
		EstimatedCost:  cost,
	})
	if err != nil {
		t.Fatalf("failed to create scheduled ride: %v", err)
	}
	return ride
}

func reloadRide(t *testing.T, db *gorm.DB, id uint) *models.Ride {
	t.Helper()

	var ride models.Ride
	if err := db.First(&ride, id).Error; err != nil {
		t.Fatalf("failed to reload ride %d: %v", id, err)
	}
	return &ride
}

func reloadBooking(t *testing.T, db *gorm.DB, id uint) *models.Booking {
	t.Helper()

	var booking models.Booking
	if err := db.First(&booking, id).Error; err != nil {
		t.Fatalf("failed to reload booking %d: %v", id, err)
	}
	return &booking
}

func countNotifications(t *testing.T, db *gorm.DB, recipientID uint, notifType string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", recipientID, notifType).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	return count
}
