package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"gorm.io/gorm"
)

// SubmitRequestInput is a rider's ask to join a ride. No seat check happens
// here; seats are only claimed at acceptance time, so several riders may
// hold pending requests for the same seat. First accept wins.
type SubmitRequestInput struct {
	RideID         uint
	PickupLocation string
	PickupLat      float64
	PickupLng      float64
	Message        string
}

// SubmitRequest creates a pending ride request and notifies the driver.
func SubmitRequest(db *gorm.DB, notifier *Notifier, riderID uint, in SubmitRequestInput) (*models.RideRequest, error) {
	var ride models.Ride
	if err := db.First(&ride, in.RideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ride.Status.IsTerminal() {
		return nil, ErrRideNotBookable
	}
	if ride.DriverID == riderID {
		return nil, ErrOwnRide
	}

	var rider models.User
	if err := db.First(&rider, riderID).Error; err != nil {
		return nil, err
	}
	if ride.IsFemaleOnly && rider.Gender != models.GenderFemale {
		return nil, ErrFemaleOnly
	}

	var pending int64
	if err := db.Model(&models.RideRequest{}).
		Where("ride_id = ? AND rider_id = ? AND status = ?", ride.ID, riderID, models.RequestStatusPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrRequestPending
	}
	var booked int64
	if err := db.Model(&models.Booking{}).
		Where("ride_id = ? AND rider_id = ? AND status IN ?", ride.ID, riderID, models.LiveBookingStatuses).
		Count(&booked).Error; err != nil {
		return nil, err
	}
	if booked > 0 {
		return nil, ErrAlreadyBooked
	}

	request := models.RideRequest{
		RideID:         ride.ID,
		RiderID:        riderID,
		RiderName:      rider.Username,
		PickupLocation: in.PickupLocation,
		PickupLat:      in.PickupLat,
		PickupLng:      in.PickupLng,
		Message:        in.Message,
		Status:         models.RequestStatusPending,
	}
	if err := db.Create(&request).Error; err != nil {
		return nil, err
	}

	notifier.Emit(ride.DriverID, models.NotificationTypeRideRequest,
		"New ride request",
		fmt.Sprintf("%s wants to join your ride to %s", rider.Username, ride.Destination),
		map[string]interface{}{
			"requestId": request.ID,
			"rideId":    ride.ID,
			"riderId":   riderID,
			"riderName": rider.Username,
			"pickup":    in.PickupLocation,
			"message":   in.Message,
		})

	return &request, nil
}

// AcceptRequest atomically turns a pending request into a booking: the seat
// decrement is a compare-and-swap against the live ride row, so a stale
// read can never oversell. On seat exhaustion the request stays pending
// and the caller gets ErrNoSeats.
func AcceptRequest(db *gorm.DB, notifier *Notifier, requestID, driverID uint) (*models.Booking, error) {
	var booking models.Booking
	var ride models.Ride

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var request models.RideRequest
	if err := tx.First(&request, requestID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		tx.Rollback()
		return nil, ErrRequestClosed
	}

	if err := tx.First(&ride, request.RideID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if ride.DriverID != driverID {
		tx.Rollback()
		return nil, ErrUnauthorized
	}
	if ride.Status.IsTerminal() {
		tx.Rollback()
		return nil, ErrRideNotBookable
	}

	var live int64
	if err := tx.Model(&models.Booking{}).
		Where("ride_id = ? AND rider_id = ? AND status IN ?", ride.ID, request.RiderID, models.LiveBookingStatuses).
		Count(&live).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if live > 0 {
		tx.Rollback()
		return nil, ErrAlreadyBooked
	}

	// Compare-and-swap seat claim against the current row, never a blind
	// decrement from a previously-read value.
	res := tx.Model(&models.Ride{}).
		Where("id = ? AND available_seats > 0", ride.ID).
		UpdateColumn("available_seats", gorm.Expr("available_seats - 1"))
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrNoSeats
	}

	status := models.BookingStatusScheduled
	if ride.Status == models.RideStatusActive {
		status = models.BookingStatusInProgress
	}

	var driver models.User
	if err := tx.First(&driver, driverID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	booking = models.Booking{
		RideID:         ride.ID,
		RiderID:        request.RiderID,
		RiderName:      request.RiderName,
		DriverID:       driverID,
		DriverName:     driver.Username,
		PickupLocation: request.PickupLocation,
		Destination:    ride.Destination,
		EstimatedCost:  ride.EstimatedCost,
		Status:         status,
	}
	if err := tx.Create(&booking).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	request.Status = models.RequestStatusAccepted
	if err := tx.Save(&request).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	refreshSeatCache(db, ride.ID)

	notifier.Emit(request.RiderID, models.NotificationTypeRideAccepted,
		"Request accepted",
		fmt.Sprintf("%s accepted your request. Your seat to %s is booked", driver.Username, ride.Destination),
		map[string]interface{}{
			"requestId":  request.ID,
			"rideId":     ride.ID,
			"bookingId":  booking.ID,
			"driverId":   driverID,
			"driverName": driver.Username,
			"cost":       booking.EstimatedCost,
		})

	return &booking, nil
}

// DeclineRequest marks a pending request declined. No seat change.
func DeclineRequest(db *gorm.DB, notifier *Notifier, requestID, driverID uint) error {
	var request models.RideRequest
	if err := db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if request.Status != models.RequestStatusPending {
		return ErrRequestClosed
	}

	var ride models.Ride
	if err := db.First(&ride, request.RideID).Error; err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return ErrUnauthorized
	}

	res := db.Model(&models.RideRequest{}).
		Where("id = ? AND status = ?", request.ID, models.RequestStatusPending).
		Update("status", models.RequestStatusDeclined)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestClosed
	}

	notifier.Emit(request.RiderID, models.NotificationTypeRideDeclined,
		"Request declined",
		fmt.Sprintf("Your request to join the ride to %s was declined", ride.Destination),
		map[string]interface{}{
			"requestId": request.ID,
			"rideId":    ride.ID,
		})

	return nil
}

// DirectBook is the rider self-service path: one transaction that checks
// every precondition and claims the seat, or aborts with no partial
// effect.
func DirectBook(db *gorm.DB, notifier *Notifier, rideID, riderID uint) (*models.Booking, error) {
	var booking models.Booking
	var ride models.Ride
	var rider models.User

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&ride, rideID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ride.Status.IsTerminal() {
		tx.Rollback()
		return nil, ErrRideNotBookable
	}
	if ride.DriverID == riderID {
		tx.Rollback()
		return nil, ErrOwnRide
	}

	if err := tx.First(&rider, riderID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if ride.IsFemaleOnly && rider.Gender != models.GenderFemale {
		tx.Rollback()
		return nil, ErrFemaleOnly
	}

	var live int64
	if err := tx.Model(&models.Booking{}).
		Where("ride_id = ? AND rider_id = ? AND status IN ?", ride.ID, riderID, models.LiveBookingStatuses).
		Count(&live).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if live > 0 {
		tx.Rollback()
		return nil, ErrAlreadyBooked
	}

	res := tx.Model(&models.Ride{}).
		Where("id = ? AND available_seats > 0", ride.ID).
		UpdateColumn("available_seats", gorm.Expr("available_seats - 1"))
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrNoSeats
	}

	var driver models.User
	if err := tx.First(&driver, ride.DriverID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	booking = models.Booking{
		RideID:         ride.ID,
		RiderID:        riderID,
		RiderName:      rider.Username,
		DriverID:       ride.DriverID,
		DriverName:     driver.Username,
		PickupLocation: ride.PickupLocation,
		Destination:    ride.Destination,
		EstimatedCost:  ride.EstimatedCost,
		Status:         models.BookingStatusConfirmed,
	}
	if err := tx.Create(&booking).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	refreshSeatCache(db, ride.ID)

	notifier.Emit(ride.DriverID, models.NotificationTypeRideAccepted,
		"Seat booked",
		fmt.Sprintf("%s booked a seat on your ride to %s", rider.Username, ride.Destination),
		map[string]interface{}{
			"rideId":    ride.ID,
			"bookingId": booking.ID,
			"riderId":   riderID,
			"riderName": rider.Username,
		})

	return &booking, nil
}

// CancelBooking releases a held seat. Only confirmed or scheduled bookings
// can be cancelled here; a booking already underway, completed or
// cancelled stays put.
func CancelBooking(db *gorm.DB, notifier *Notifier, bookingID, actorID uint) error {
	var booking models.Booking
	var ride models.Ride

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&booking, bookingID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if actorID != booking.RiderID && actorID != booking.DriverID {
		tx.Rollback()
		return ErrUnauthorized
	}
	if booking.Status != models.BookingStatusConfirmed && booking.Status != models.BookingStatusScheduled {
		tx.Rollback()
		return ErrInvalidTransition
	}

	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status IN ?", booking.ID,
			[]models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusScheduled}).
		Update("status", models.BookingStatusCancelled)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrInvalidTransition
	}

	if err := tx.First(&ride, booking.RideID).Error; err != nil {
		tx.Rollback()
		return err
	}

	// Return the seat only while the ride is still open, and never past
	// total_seats even if a repair re-runs this path.
	if !ride.Status.IsTerminal() {
		res := tx.Model(&models.Ride{}).
			Where("id = ? AND available_seats < total_seats", ride.ID).
			UpdateColumn("available_seats", gorm.Expr("available_seats + 1"))
		if res.Error != nil {
			tx.Rollback()
			return res.Error
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	refreshSeatCache(db, ride.ID)

	if actorID == booking.RiderID {
		notifier.Emit(booking.DriverID, models.NotificationTypeBookingCancelled,
			"Booking cancelled",
			fmt.Sprintf("%s cancelled their seat on your ride to %s", booking.RiderName, booking.Destination),
			map[string]interface{}{
				"rideId":    ride.ID,
				"bookingId": booking.ID,
				"riderId":   booking.RiderID,
			})
	} else {
		notifier.Emit(booking.RiderID, models.NotificationTypeBookingCancelled,
			"Booking cancelled",
			fmt.Sprintf("The driver cancelled your seat on the ride to %s", booking.Destination),
			map[string]interface{}{
				"rideId":    ride.ID,
				"bookingId": booking.ID,
				"driverId":  booking.DriverID,
			})
	}

	return nil
}

// refreshSeatCache updates the Redis availability hint after a seat
// mutation; cache failure is never allowed to affect the booking path.
func refreshSeatCache(db *gorm.DB, rideID uint) {
	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		return
	}
	if err := CacheRideSeats(context.Background(), ride.ID, ride.AvailableSeats); err != nil {
		log.Printf("seat cache refresh failed for ride %d: %v", rideID, err)
	}
}
