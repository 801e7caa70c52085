package database

import (
	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Ride{},
		&models.RideRequest{},
		&models.Booking{},
		&models.Rating{},
		&models.Notification{},
		&models.OTP{},
	)
	if err != nil {
		return err
	}

	// Seat counters can never drift outside [0, total_seats]; the broker's
	// guarded UPDATEs rely on this as the final backstop.
	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_seats_check`)
	if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_seats_check
		CHECK (available_seats >= 0 AND available_seats <= total_seats)`).Error; err != nil {
		return err
	}

	// A driver may hold at most one non-terminal ride. The service layer
	// re-checks this inside the creating transaction, and this partial
	// index closes the remaining window between check and insert.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_rides_one_open_per_driver
		ON rides (driver_id)
		WHERE status IN ('scheduled', 'active') AND deleted_at IS NULL`).Error; err != nil {
		return err
	}

	// At most one seat-holding booking per (ride, rider) pair.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_live_per_rider
		ON bookings (ride_id, rider_id)
		WHERE status IN ('confirmed', 'scheduled', 'in_progress') AND deleted_at IS NULL`).Error; err != nil {
		return err
	}

	return nil
}
