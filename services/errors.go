package services

import (
	"errors"

	"github.com/yeremiapane/reservation-app/availability"
	"github.com/yeremiapane/reservation-app/database"
)

var (
	ErrReservationNotFound = errors.New("Reservation not found or access denied.")
	ErrAlreadyCancelled    = errors.New("Reservation is already cancelled.")
	ErrReservationClosed   = errors.New("Reservation can no longer be changed.")
	ErrRestaurantNotFound  = database.ErrRestaurantNotFound
	ErrInvalidDate         = errors.New("Invalid date, expected YYYY-MM-DD.")
	ErrInvalidTime         = errors.New("Invalid time, expected HH:MM.")
	ErrPastDate            = errors.New("Reservation date cannot be in the past.")
	ErrOutsideOpeningHours = errors.New("Reservation time is outside opening hours.")
	ErrInvalidGuests       = errors.New("Number of guests must be at least 1.")
	ErrInvalidStatus       = errors.New("Invalid reservation status.")
	ErrInvalidTransition   = errors.New("Status change not allowed.")
)

// UnavailableError is returned when no table can hold a booking.
type UnavailableError struct {
	Outcome availability.Outcome
	// Editing is set when an existing reservation was being changed.
	Editing bool
}

func (e *UnavailableError) Error() string {
	switch {
	case e.Editing:
		return "No available table for updated time/party size."
	case e.Outcome == availability.RequestedTableUnavailable:
		return "Selected table already booked for that time."
	default:
		return "No available table for that time and party size."
	}
}

// IsValidation reports whether err is a problem with the request itself.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidDate, ErrInvalidTime, ErrPastDate, ErrOutsideOpeningHours, ErrInvalidGuests, ErrInvalidStatus} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
