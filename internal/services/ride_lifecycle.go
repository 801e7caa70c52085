package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"github.com/Mohamedeid710/university-carpooling-app-sub000/pkg/utils"
	"gorm.io/gorm"
)

// CreateRideInput carries everything a driver submits when posting a trip.
// Route metadata (polyline, distance, duration) arrives precomputed from
// the client's directions provider.
type CreateRideInput struct {
	VehicleID      uint
	PickupLocation string
	PickupLat      float64
	PickupLng      float64
	Destination    string
	DestLat        float64
	DestLng        float64
	RoutePolyline  string
	DistanceKm     float64
	DurationMin    int
	IsScheduled    bool
	ScheduledTime  *time.Time
	TotalSeats     int
	IsFree         bool
	EstimatedCost  float64
	IsFemaleOnly   bool
}

// CreateRide posts a new trip for a driver. The one-open-ride-per-driver
// rule is re-checked inside the creating transaction, not just at screen
// load time, so the gate holds between form load and submit.
func CreateRide(db *gorm.DB, driverID uint, in CreateRideInput) (*models.Ride, error) {
	if in.TotalSeats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", ErrInvalidInput)
	}
	if in.PickupLocation == "" || in.Destination == "" {
		return nil, fmt.Errorf("%w: pickup and destination are required", ErrInvalidInput)
	}
	if in.IsScheduled && in.ScheduledTime == nil {
		return nil, fmt.Errorf("%w: scheduled rides need a scheduled time", ErrInvalidInput)
	}

	var driver models.User
	if err := db.First(&driver, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.IsFemaleOnly && driver.Gender != models.GenderFemale {
		return nil, ErrFemaleOnly
	}

	var vehicle models.Vehicle
	if err := db.Where("id = ? AND owner_id = ?", in.VehicleID, driverID).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoVehicle
		}
		return nil, err
	}
	if in.TotalSeats > vehicle.Capacity {
		return nil, ErrSeatsExceedCap
	}

	cost := in.EstimatedCost
	if in.IsFree {
		cost = 0
	} else if cost <= 0 {
		cost = utils.EstimateSeatCost(in.DistanceKm).Total
	}

	now := time.Now()
	departure := &now
	status := models.RideStatusActive
	if in.IsScheduled {
		status = models.RideStatusScheduled
		departure = in.ScheduledTime
	}

	ride := models.Ride{
		DriverID:       driverID,
		VehicleID:      vehicle.ID,
		VehicleName:    vehicle.Name,
		VehicleModel:   vehicle.CarModel,
		VehicleColor:   vehicle.Color,
		VehiclePlate:   vehicle.PlateNumber,
		PickupLocation: in.PickupLocation,
		PickupLat:      in.PickupLat,
		PickupLng:      in.PickupLng,
		Destination:    in.Destination,
		DestLat:        in.DestLat,
		DestLng:        in.DestLng,
		RoutePolyline:  in.RoutePolyline,
		DistanceKm:     in.DistanceKm,
		DurationMin:    in.DurationMin,
		IsScheduled:    in.IsScheduled,
		ScheduledTime:  in.ScheduledTime,
		DepartureTime:  departure,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		IsFree:         in.IsFree,
		EstimatedCost:  cost,
		IsFemaleOnly:   in.IsFemaleOnly,
		Status:         status,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Last-moment re-check: the client already gated on this at
		// vehicle-load time, but a second device could have posted a
		// ride in between.
		var open int64
		if err := tx.Model(&models.Ride{}).
			Where("driver_id = ? AND status IN ?", driverID, models.OpenRideStatuses).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrActiveRideExists
		}
		return tx.Create(&ride).Error
	})
	if err != nil {
		return nil, err
	}

	return &ride, nil
}

// StartRide moves a scheduled ride to active and fans its bookings out to
// in_progress. The fan-out is deliberately not one atomic unit: each
// booking transitions independently, and re-running the operation only
// touches bookings that have not transitioned yet, so a partial failure is
// repaired by calling it again and nobody gets a duplicate notification.
func StartRide(db *gorm.DB, notifier *Notifier, rideID, driverID uint) error {
	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if ride.DriverID != driverID {
		return ErrUnauthorized
	}

	switch ride.Status {
	case models.RideStatusScheduled:
		now := time.Now()
		res := db.Model(&models.Ride{}).
			Where("id = ? AND status = ?", ride.ID, models.RideStatusScheduled).
			Updates(map[string]interface{}{"status": models.RideStatusActive, "started_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent start; fall through to the
			// fan-out, which is safe to repeat.
			if err := db.First(&ride, rideID).Error; err != nil {
				return err
			}
			if ride.Status != models.RideStatusActive {
				return ErrInvalidTransition
			}
		}
	case models.RideStatusActive:
		// Already active: re-run the fan-out to converge stragglers from a
		// previous partial start.
	default:
		return ErrInvalidTransition
	}

	var bookings []models.Booking
	if err := db.Where("ride_id = ? AND status IN ?", ride.ID,
		[]models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusScheduled}).
		Find(&bookings).Error; err != nil {
		return err
	}

	for _, booking := range bookings {
		res := db.Model(&models.Booking{}).
			Where("id = ? AND status IN ?", booking.ID,
				[]models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusScheduled}).
			Update("status", models.BookingStatusInProgress)
		if res.Error != nil {
			log.Printf("StartRide: failed to transition booking %d: %v", booking.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue // already transitioned by an earlier run
		}
		notifier.Emit(booking.RiderID, models.NotificationTypeRideStarted,
			"Ride started",
			fmt.Sprintf("Your ride to %s is on its way", booking.Destination),
			map[string]interface{}{
				"rideId":    ride.ID,
				"bookingId": booking.ID,
				"driverId":  ride.DriverID,
			})
	}

	return nil
}

// RiderCost is one line of the completion manifest shown to the driver.
type RiderCost struct {
	RiderID uint    `json:"riderId"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
}

// CompletionSummary is returned by CompleteRide so the driver's completion
// screen renders without a second read.
type CompletionSummary struct {
	Riders    []RiderCost `json:"riders"`
	TotalCost float64     `json:"totalCost"`
}

// CompleteRide finalizes a ride. Every non-terminal booking moves to
// completed and each rider is notified with their own cost share: the
// cost frozen on the booking when it was created, never a retroactive
// split of the ride total.
func CompleteRide(db *gorm.DB, notifier *Notifier, rideID, driverID uint) (*CompletionSummary, error) {
	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, ErrUnauthorized
	}
	if !ride.Status.CanTransitionTo(models.RideStatusCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	res := db.Model(&models.Ride{}).
		Where("id = ? AND status IN ?", ride.ID, models.OpenRideStatuses).
		Updates(map[string]interface{}{"status": models.RideStatusCompleted, "completed_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	var driver models.User
	if err := db.First(&driver, driverID).Error; err != nil {
		return nil, err
	}

	// Snapshot every booking that held or holds a seat; cancelled ones
	// owe nothing and get nothing.
	var bookings []models.Booking
	if err := db.Where("ride_id = ? AND status <> ?", ride.ID, models.BookingStatusCancelled).
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	summary := &CompletionSummary{Riders: make([]RiderCost, 0, len(bookings))}
	for _, booking := range bookings {
		if !booking.Status.IsTerminal() {
			res := db.Model(&models.Booking{}).
				Where("id = ? AND status IN ?", booking.ID, models.LiveBookingStatuses).
				Updates(map[string]interface{}{"status": models.BookingStatusCompleted, "completed_at": now})
			if res.Error != nil {
				log.Printf("CompleteRide: failed to finalize booking %d: %v", booking.ID, res.Error)
				continue
			}
			if res.RowsAffected == 1 {
				notifier.Emit(booking.RiderID, models.NotificationTypeRideCompleted,
					"Ride completed",
					fmt.Sprintf("Your ride to %s is complete. Your share is %.2f BHD", booking.Destination, booking.EstimatedCost),
					map[string]interface{}{
						"rideId":     ride.ID,
						"bookingId":  booking.ID,
						"cost":       booking.EstimatedCost,
						"driverId":   driver.ID,
						"driverName": driver.Username,
					})
			}
		}
		summary.Riders = append(summary.Riders, RiderCost{
			RiderID: booking.RiderID,
			Name:    booking.RiderName,
			Cost:    booking.EstimatedCost,
		})
		summary.TotalCost += booking.EstimatedCost
	}

	return summary, nil
}

// CancelRide cancels an open ride and every live booking on it.
func CancelRide(db *gorm.DB, notifier *Notifier, rideID, driverID uint) error {
	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if ride.DriverID != driverID {
		return ErrUnauthorized
	}
	if !ride.Status.CanTransitionTo(models.RideStatusCancelled) {
		return ErrInvalidTransition
	}

	res := db.Model(&models.Ride{}).
		Where("id = ? AND status IN ?", ride.ID, models.OpenRideStatuses).
		Update("status", models.RideStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	var bookings []models.Booking
	if err := db.Where("ride_id = ? AND status IN ?", ride.ID, models.LiveBookingStatuses).
		Find(&bookings).Error; err != nil {
		return err
	}
	var cancelledRiders []uint
	for _, booking := range bookings {
		res := db.Model(&models.Booking{}).
			Where("id = ? AND status IN ?", booking.ID, models.LiveBookingStatuses).
			Update("status", models.BookingStatusCancelled)
		if res.Error != nil {
			log.Printf("CancelRide: failed to cancel booking %d: %v", booking.ID, res.Error)
			continue
		}
		if res.RowsAffected == 1 {
			cancelledRiders = append(cancelledRiders, booking.RiderID)
		}
	}

	notifier.EmitBatch(cancelledRiders, models.NotificationTypeRideCancelled,
		"Ride cancelled",
		fmt.Sprintf("Your ride to %s was cancelled by the driver", ride.Destination),
		map[string]interface{}{
			"rideId": ride.ID,
		})

	return nil
}
