package services

import (
	"errors"
	"math"
	"testing"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
)

func TestSubmitRatingBothDirections(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "eman", models.GenderFemale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createRide(t, db, driver, vehicle, 2, 2.0)

	rider := createUser(t, db, "rania", models.GenderFemale)
	booking, err := DirectBook(db, notifier, ride.ID, rider.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := CompleteRide(db, notifier, ride.ID, driver.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	average, err := SubmitRating(db, rider.ID, SubmitRatingInput{
		BookingID:   booking.ID,
		RatedUserID: driver.ID,
		Stars:       5,
		Comment:     "Right on time",
	})
	if err != nil {
		t.Fatalf("rider rates driver: %v", err)
	}
	if average != 5.0 {
		t.Errorf("driver average = %v, want 5.0", average)
	}

	var ratedDriver models.User
	if err := db.First(&ratedDriver, driver.ID).Error; err != nil {
		t.Fatalf("reload driver: %v", err)
	}
	if ratedDriver.AverageRating != 5.0 || ratedDriver.TotalRatings != 1 {
		t.Errorf("driver aggregate = %v/%d, want 5.0/1", ratedDriver.AverageRating, ratedDriver.TotalRatings)
	}

	if got := reloadBooking(t, db, booking.ID); !got.Rated || got.DriverRated {
		t.Errorf("booking flags = rated %v driverRated %v, want true/false", got.Rated, got.DriverRated)
	}

	if _, err := SubmitRating(db, driver.ID, SubmitRatingInput{
		BookingID:   booking.ID,
		RatedUserID: rider.ID,
		Stars:       4,
	}); err != nil {
		t.Fatalf("driver rates rider: %v", err)
	}
	if got := reloadBooking(t, db, booking.ID); !got.DriverRated {
		t.Error("driverRated flag not set")
	}

	var ratedRider models.User
	if err := db.First(&ratedRider, rider.ID).Error; err != nil {
		t.Fatalf("reload rider: %v", err)
	}
	if ratedRider.AverageRating != 4.0 || ratedRider.TotalRatings != 1 {
		t.Errorf("rider aggregate = %v/%d, want 4.0/1", ratedRider.AverageRating, ratedRider.TotalRatings)
	}
}

func TestSubmitRatingAverageRounding(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "qasim", models.GenderMale)
	vehicle := createVehicle(t, db, driver, 4)

	// Three completed bookings across two rides, rated 5, 4 and 4.
	// 13/3 rounds to 4.33, not a repeating float.
	ride1 := createRide(t, db, driver, vehicle, 2, 1.0)
	riderA := createUser(t, db, "fahad", models.GenderMale)
	riderB := createUser(t, db, "talal", models.GenderMale)
	bookingA, err := DirectBook(db, notifier, ride1.ID, riderA.ID)
	if err != nil {
		t.Fatalf("book A: %v", err)
	}
	bookingB, err := DirectBook(db, notifier, ride1.ID, riderB.ID)
	if err != nil {
		t.Fatalf("book B: %v", err)
	}
	if _, err := CompleteRide(db, notifier, ride1.ID, driver.ID); err != nil {
		t.Fatalf("complete ride 1: %v", err)
	}

	ride2 := createRide(t, db, driver, vehicle, 2, 1.0)
	riderC := createUser(t, db, "mubarak", models.GenderMale)
	bookingC, err := DirectBook(db, notifier, ride2.ID, riderC.ID)
	if err != nil {
		t.Fatalf("book C: %v", err)
	}
	if _, err := CompleteRide(db, notifier, ride2.ID, driver.ID); err != nil {
		t.Fatalf("complete ride 2: %v", err)
	}

	stars := []struct {
		raterID   uint
		bookingID uint
		stars     int
	}{
		{riderA.ID, bookingA.ID, 5},
		{riderB.ID, bookingB.ID, 4},
		{riderC.ID, bookingC.ID, 4},
	}
	var average float64
	for _, s := range stars {
		average, err = SubmitRating(db, s.raterID, SubmitRatingInput{
			BookingID:   s.bookingID,
			RatedUserID: driver.ID,
			Stars:       s.stars,
		})
		if err != nil {
			t.Fatalf("rating by %d: %v", s.raterID, err)
		}
	}

	if math.Abs(average-4.33) > 1e-9 {
		t.Errorf("average = %v, want 4.33", average)
	}
	var ratedDriver models.User
	if err := db.First(&ratedDriver, driver.ID).Error; err != nil {
		t.Fatalf("reload driver: %v", err)
	}
	if math.Abs(ratedDriver.AverageRating-4.33) > 1e-9 || ratedDriver.TotalRatings != 3 {
		t.Errorf("driver aggregate = %v/%d, want 4.33/3", ratedDriver.AverageRating, ratedDriver.TotalRatings)
	}
}

func TestSubmitRatingGuards(t *testing.T) {
	db := setupTestDB(t)
	notifier := newTestNotifier(db)
	driver := createUser(t, db, "khalifa", models.GenderMale)
	stranger := createUser(t, db, "saqer", models.GenderMale)
	vehicle := createVehicle(t, db, driver, 4)
	ride := createRide(t, db, driver, vehicle, 2, 2.0)

	rider := createUser(t, db, "mansoor", models.GenderMale)
	booking, err := DirectBook(db, notifier, ride.ID, rider.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	// Not completed yet
	if _, err := SubmitRating(db, rider.ID, SubmitRatingInput{
		BookingID: booking.ID, RatedUserID: driver.ID, Stars: 5,
	}); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("rating before completion error = %v, want ErrNotCompleted", err)
	}

	if _, err := CompleteRide(db, notifier, ride.ID, driver.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tests := []struct {
		name    string
		raterID uint
		input   SubmitRatingInput
		wantErr error
	}{
		{"zero stars", rider.ID, SubmitRatingInput{BookingID: booking.ID, RatedUserID: driver.ID, Stars: 0}, ErrInvalidStars},
		{"six stars", rider.ID, SubmitRatingInput{BookingID: booking.ID, RatedUserID: driver.ID, Stars: 6}, ErrInvalidStars},
		{"missing booking", rider.ID, SubmitRatingInput{BookingID: 9999, RatedUserID: driver.ID, Stars: 5}, ErrNotFound},
		{"stranger rates", stranger.ID, SubmitRatingInput{BookingID: booking.ID, RatedUserID: driver.ID, Stars: 5}, ErrUnauthorized},
		{"rates self", rider.ID, SubmitRatingInput{BookingID: booking.ID, RatedUserID: rider.ID, Stars: 5}, ErrWrongRatedUser},
		{"rates third party", rider.ID, SubmitRatingInput{BookingID: booking.ID, RatedUserID: stranger.ID, Stars: 5}, ErrWrongRatedUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SubmitRating(db, tt.raterID, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("SubmitRating() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := SubmitRating(db, rider.ID, SubmitRatingInput{
		BookingID: booking.ID, RatedUserID: driver.ID, Stars: 5,
	}); err != nil {
		t.Fatalf("valid rating: %v", err)
	}
	if _, err := SubmitRating(db, rider.ID, SubmitRatingInput{
		BookingID: booking.ID, RatedUserID: driver.ID, Stars: 3,
	}); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("duplicate rating error = %v, want ErrAlreadyRated", err)
	}
}

// A double submit that races past the pre-insert count lands on the
// composite unique index; that violation must surface as ErrAlreadyRated,
// not a raw driver error.
func TestDuplicateRatingUniqueViolation(t *testing.T) {
	db := setupTestDB(t)

	first := models.Rating{BookingID: 11, RaterID: 21, RatedUserID: 31, Stars: 5}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed rating: %v", err)
	}

	dup := models.Rating{BookingID: 11, RaterID: 21, RatedUserID: 31, Stars: 2}
	err := db.Create(&dup).Error
	if err == nil {
		t.Fatal("duplicate (booking, rater) insert succeeded, unique index missing")
	}
	if !isDuplicateRating(err) {
		t.Errorf("unique violation %v not classified as duplicate rating", err)
	}

	if isDuplicateRating(nil) {
		t.Error("nil classified as duplicate rating")
	}
	if isDuplicateRating(errors.New("connection reset")) {
		t.Error("unrelated error classified as duplicate rating")
	}
}
