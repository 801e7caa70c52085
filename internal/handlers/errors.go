package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

// serviceError translates a service sentinel into an HTTP response.
// Anything unmapped is a 500 with a generic message so internals never
// leak to the client.
func serviceError(c *gin.Context, err error) {
	status := 500
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrNotFound):
		status, message = 404, "Resource not found"
	case errors.Is(err, services.ErrUnauthorized):
		status, message = 403, "You are not allowed to perform this action"
	case errors.Is(err, services.ErrFemaleOnly):
		status, message = 403, "This ride is restricted to female students"
	case errors.Is(err, services.ErrInvalidInput):
		status, message = 400, "Invalid input"
	case errors.Is(err, services.ErrInvalidStars):
		status, message = 400, "Stars must be between 1 and 5"
	case errors.Is(err, services.ErrSeatsExceedCap):
		status, message = 400, "Offered seats exceed vehicle capacity"
	case errors.Is(err, services.ErrNoVehicle):
		status, message = 400, "A registered vehicle is required to offer rides"
	case errors.Is(err, services.ErrWrongRatedUser):
		status, message = 400, "Rated user is not the other party on this booking"
	case errors.Is(err, services.ErrInvalidTransition):
		status, message = 409, "Action is not valid in the current status"
	case errors.Is(err, services.ErrActiveRideExists):
		status, message = 409, "You already have an open ride"
	case errors.Is(err, services.ErrNoSeats):
		status, message = 409, "No seats available on this ride"
	case errors.Is(err, services.ErrOwnRide):
		status, message = 409, "You cannot book a seat on your own ride"
	case errors.Is(err, services.ErrAlreadyBooked):
		status, message = 409, "You already hold a seat on this ride"
	case errors.Is(err, services.ErrRequestPending):
		status, message = 409, "You already have a pending request for this ride"
	case errors.Is(err, services.ErrRequestClosed):
		status, message = 409, "This request has already been handled"
	case errors.Is(err, services.ErrAlreadyRated):
		status, message = 409, "You have already rated this booking"
	case errors.Is(err, services.ErrNotCompleted):
		status, message = 409, "Ratings are only allowed after the ride is completed"
	case errors.Is(err, services.ErrVehicleInUse):
		status, message = 409, "Vehicle is attached to an open ride"
	case errors.Is(err, services.ErrRideNotBookable):
		status, message = 409, "This ride is no longer accepting bookings"
	}

	c.JSON(status, gin.H{"error": message})
}
