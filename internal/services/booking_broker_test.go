package services

import (
	"errors"
	"testing"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
)

func TestRequestAcceptFlow(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "maha", models.GenderFemale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createScheduledRide(t, db, driver, vehicle, 1, 2.0)

	riderA := createUser(t, db, "aysha", models.GenderFemale)
	riderB := createUser(t, db, "reem", models.GenderFemale)

	requestA, err := SubmitRequest(db, notifier, riderA.ID, SubmitRequestInput{
		RideID:         ride.ID,
		PickupLocation: "Dorm 3",
		Message:        "Can you pick me up at the side gate?",
	})
	if err != nil {
		t.Fatalf("request A: %v", err)
	}
	requestB, err := SubmitRequest(db, notifier, riderB.ID, SubmitRequestInput{RideID: ride.ID})
	if err != nil {
		t.Fatalf("request B: %v", err)
	}

	// Requests hold no seat until accepted
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 1 {
		t.Errorf("seats after requests = %d, want 1", got.AvailableSeats)
	}
	if n := countNotifications(t, db, driver.ID, models.NotificationTypeRideRequest); n != 2 {
		t.Errorf("driver got %d ride_request notifications, want 2", n)
	}

	booking, err := AcceptRequest(db, notifier, requestA.ID, driver.ID)
	if err != nil {
		t.Fatalf("accept A: %v", err)
	}
	if booking.Status != models.BookingStatusScheduled {
		t.Errorf("booking on scheduled ride status = %s, want scheduled", booking.Status)
	}
	if booking.EstimatedCost != 2.0 {
		t.Errorf("booking cost = %v, want the ride's 2.0", booking.EstimatedCost)
	}
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 0 {
		t.Errorf("seats after accept = %d, want 0", got.AvailableSeats)
	}
	if n := countNotifications(t, db, riderA.ID, models.NotificationTypeRideAccepted); n != 1 {
		t.Errorf("rider A got %d ride_accepted notifications, want 1", n)
	}

	// The last seat is gone; the second accept fails and the request
	// stays pending for a possible later seat release
	if _, err := AcceptRequest(db, notifier, requestB.ID, driver.ID); !errors.Is(err, ErrNoSeats) {
		t.Fatalf("accept B error = %v, want ErrNoSeats", err)
	}
	var pending models.RideRequest
	if err := db.First(&pending, requestB.ID).Error; err != nil {
		t.Fatalf("reload request B: %v", err)
	}
	if pending.Status != models.RequestStatusPending {
		t.Errorf("request B status = %s, want still pending", pending.Status)
	}

	if err := DeclineRequest(db, notifier, requestB.ID, driver.ID); err != nil {
		t.Fatalf("decline B: %v", err)
	}
	if err := db.First(&pending, requestB.ID).Error; err != nil {
		t.Fatalf("reload request B: %v", err)
	}
	if pending.Status != models.RequestStatusDeclined {
		t.Errorf("request B status = %s, want declined", pending.Status)
	}
	if n := countNotifications(t, db, riderB.ID, models.NotificationTypeRideDeclined); n != 1 {
		t.Errorf("rider B got %d ride_declined notifications, want 1", n)
	}

	// Terminal requests cannot be handled again
	if _, err := AcceptRequest(db, notifier, requestA.ID, driver.ID); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("re-accept error = %v, want ErrRequestClosed", err)
	}
	if err := DeclineRequest(db, notifier, requestB.ID, driver.ID); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("re-decline error = %v, want ErrRequestClosed", err)
	}
}

func TestSubmitRequestGuards(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "latifa", models.GenderFemale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createScheduledRide(t, db, driver, vehicle, 2, 1.0)
	ride.IsFemaleOnly = true
	if err := db.Model(&models.Ride{}).Where("id = ?", ride.ID).
		Update("is_female_only", true).Error; err != nil {
		t.Fatalf("flag ride: %v", err)
	}

	rider := createUser(t, db, "shaikha", models.GenderFemale)
	maleRider := createUser(t, db, "tariq", models.GenderMale)

	if _, err := SubmitRequest(db, notifier, driver.ID, SubmitRequestInput{RideID: ride.ID}); !errors.Is(err, ErrOwnRide) {
		t.Errorf("own ride error = %v, want ErrOwnRide", err)
	}
	if _, err := SubmitRequest(db, notifier, maleRider.ID, SubmitRequestInput{RideID: ride.ID}); !errors.Is(err, ErrFemaleOnly) {
		t.Errorf("female-only error = %v, want ErrFemaleOnly", err)
	}
	if _, err := SubmitRequest(db, notifier, rider.ID, SubmitRequestInput{RideID: 9999}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing ride error = %v, want ErrNotFound", err)
	}

	if _, err := SubmitRequest(db, notifier, rider.ID, SubmitRequestInput{RideID: ride.ID}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := SubmitRequest(db, notifier, rider.ID, SubmitRequestInput{RideID: ride.ID}); !errors.Is(err, ErrRequestPending) {
		t.Errorf("duplicate request error = %v, want ErrRequestPending", err)
	}

	if err := CancelRide(db, notifier, ride.ID, driver.ID); err != nil {
		t.Fatalf("cancel ride: %v", err)
	}
	other := createUser(t, db, "amina", models.GenderFemale)
	if _, err := SubmitRequest(db, notifier, other.ID, SubmitRequestInput{RideID: ride.ID}); !errors.Is(err, ErrRideNotBookable) {
		t.Errorf("closed ride error = %v, want ErrRideNotBookable", err)
	}
}

func TestAcceptRequestAuthorization(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "nada", models.GenderFemale)
	stranger := createUser(t, db, "faisal", models.GenderMale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createScheduledRide(t, db, driver, vehicle, 2, 1.0)

	rider := createUser(t, db, "ghada", models.GenderFemale)
	request, err := SubmitRequest(db, notifier, rider.ID, SubmitRequestInput{RideID: ride.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := AcceptRequest(db, notifier, request.ID, stranger.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger accept error = %v, want ErrUnauthorized", err)
	}
	if err := DeclineRequest(db, notifier, request.ID, stranger.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger decline error = %v, want ErrUnauthorized", err)
	}
}

func TestAcceptRequestOnActiveRide(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "badr", models.GenderMale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createRide(t, db, driver, vehicle, 2, 1.5)

	rider := createUser(t, db, "saad", models.GenderMale)
	request, err := SubmitRequest(db, notifier, rider.ID, SubmitRequestInput{RideID: ride.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	booking, err := AcceptRequest(db, notifier, request.ID, driver.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if booking.Status != models.BookingStatusInProgress {
		t.Errorf("booking on active ride status = %s, want in_progress", booking.Status)
	}
}

func TestDirectBook(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "adel", models.GenderMale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createRide(t, db, driver, vehicle, 2, 3.0)

	riderA := createUser(t, db, "waleed", models.GenderMale)
	riderB := createUser(t, db, "majed", models.GenderMale)
	riderC := createUser(t, db, "nasser", models.GenderMale)

	booking, err := DirectBook(db, notifier, ride.ID, riderA.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if booking.Status != models.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", booking.Status)
	}
	if booking.DriverID != driver.ID || booking.EstimatedCost != 3.0 {
		t.Errorf("booking snapshot = driver %d cost %v, want driver %d cost 3.0",
			booking.DriverID, booking.EstimatedCost, driver.ID)
	}
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 1 {
		t.Errorf("seats = %d, want 1", got.AvailableSeats)
	}
	if n := countNotifications(t, db, driver.ID, models.NotificationTypeRideAccepted); n != 1 {
		t.Errorf("driver got %d booking notifications, want 1", n)
	}

	if _, err := DirectBook(db, notifier, ride.ID, riderA.ID); !errors.Is(err, ErrAlreadyBooked) {
		t.Errorf("duplicate booking error = %v, want ErrAlreadyBooked", err)
	}
	if _, err := DirectBook(db, notifier, ride.ID, driver.ID); !errors.Is(err, ErrOwnRide) {
		t.Errorf("self booking error = %v, want ErrOwnRide", err)
	}

	if _, err := DirectBook(db, notifier, ride.ID, riderB.ID); err != nil {
		t.Fatalf("book last seat: %v", err)
	}
	if _, err := DirectBook(db, notifier, ride.ID, riderC.ID); !errors.Is(err, ErrNoSeats) {
		t.Errorf("overbooking error = %v, want ErrNoSeats", err)
	}
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 0 {
		t.Errorf("seats after failed booking = %d, want 0", got.AvailableSeats)
	}
}

func TestCancelBookingRestoresSeat(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "muneera", models.GenderFemale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createScheduledRide(t, db, driver, vehicle, 2, 2.0)

	riderA := createUser(t, db, "hessa", models.GenderFemale)
	riderB := createUser(t, db, "dalal", models.GenderFemale)
	bookingA, err := DirectBook(db, notifier, ride.ID, riderA.ID)
	if err != nil {
		t.Fatalf("book A: %v", err)
	}
	if _, err := DirectBook(db, notifier, ride.ID, riderB.ID); err != nil {
		t.Fatalf("book B: %v", err)
	}
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 0 {
		t.Fatalf("seats = %d, want 0", got.AvailableSeats)
	}

	if err := CancelBooking(db, notifier, bookingA.ID, riderA.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := reloadBooking(t, db, bookingA.ID); got.Status != models.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", got.Status)
	}
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 1 {
		t.Errorf("seats after cancel = %d, want 1", got.AvailableSeats)
	}
	if n := countNotifications(t, db, driver.ID, models.NotificationTypeBookingCancelled); n != 1 {
		t.Errorf("driver got %d booking_cancelled notifications, want 1", n)
	}

	// The freed seat can be taken again
	riderC := createUser(t, db, "moza", models.GenderFemale)
	if _, err := DirectBook(db, notifier, ride.ID, riderC.ID); err != nil {
		t.Fatalf("rebook freed seat: %v", err)
	}

	if err := CancelBooking(db, notifier, bookingA.ID, riderA.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double cancel error = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelBookingGuards(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "yaqoob", models.GenderMale)
	stranger := createUser(t, db, "sultan", models.GenderMale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createScheduledRide(t, db, driver, vehicle, 2, 2.0)

	rider := createUser(t, db, "hamad", models.GenderMale)
	booking, err := DirectBook(db, notifier, ride.ID, rider.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := CancelBooking(db, notifier, booking.ID, stranger.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger cancel error = %v, want ErrUnauthorized", err)
	}

	// Once the ride is underway the seat can no longer be released
	if err := StartRide(db, notifier, ride.ID, driver.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := CancelBooking(db, notifier, booking.ID, rider.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("in-progress cancel error = %v, want ErrInvalidTransition", err)
	}
}

func TestDriverCancelsBooking(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "shaima", models.GenderFemale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createScheduledRide(t, db, driver, vehicle, 2, 2.0)

	rider := createUser(t, db, "afra", models.GenderFemale)
	booking, err := DirectBook(db, notifier, ride.ID, rider.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := CancelBooking(db, notifier, booking.ID, driver.ID); err != nil {
		t.Fatalf("driver cancel: %v", err)
	}
	if n := countNotifications(t, db, rider.ID, models.NotificationTypeBookingCancelled); n != 1 {
		t.Errorf("rider got %d booking_cancelled notifications, want 1", n)
	}
	if got := reloadRide(t, db, ride.ID); got.AvailableSeats != 2 {
		t.Errorf("seats = %d, want 2", got.AvailableSeats)
	}
}
