package services

import "errors"

// Sentinel errors returned by the ride registry, booking broker and rating
// aggregator. Handlers map these onto HTTP status codes; anything else is
// treated as a collaborator failure and surfaced as a 500.
var (
	ErrNotFound          = errors.New("record not found")
	ErrUnauthorized      = errors.New("not allowed to perform this action")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrNoVehicle        = errors.New("driver has no registered vehicle")
	ErrSeatsExceedCap   = errors.New("requested seats exceed vehicle capacity")
	ErrActiveRideExists = errors.New("driver already has an active or scheduled ride")
	ErrFemaleOnly       = errors.New("ride is restricted to female riders")

	ErrNoSeats        = errors.New("no seats available")
	ErrOwnRide        = errors.New("cannot book a seat on your own ride")
	ErrAlreadyBooked  = errors.New("rider already has a booking for this ride")
	ErrRequestPending = errors.New("rider already has a pending request for this ride")
	ErrRequestClosed  = errors.New("request has already been accepted or declined")

	ErrInvalidStars    = errors.New("rating must be between 1 and 5 stars")
	ErrAlreadyRated    = errors.New("booking already rated by this user")
	ErrNotCompleted    = errors.New("booking is not completed yet")
	ErrWrongRatedUser  = errors.New("rated user is not the other party of this booking")
	ErrVehicleInUse    = errors.New("vehicle is attached to an open ride")
	ErrRideNotBookable = errors.New("ride is not open for booking")
)
