package domain

import "errors"

// Domain errors
var (
	// Lookup errors
	ErrUnitNotFound        = errors.New("unit not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Validation errors
	ErrInactiveUnit         = errors.New("unit is not active")
	ErrInvalidRange         = errors.New("stay must be at least one night")
	ErrCapacityExceeded     = errors.New("number of guests exceeds unit capacity")
	ErrInvalidGuests        = errors.New("number of guests must be greater than zero")
	ErrInvalidUnitID        = errors.New("invalid unit id")
	ErrInvalidReservationID = errors.New("invalid reservation id")
	ErrInvalidStatusValue   = errors.New("unknown reservation status")

	// Availability errors
	ErrNotAvailable  = errors.New("unit is not available for the requested dates")
	ErrAlreadyBooked = errors.New("unit was booked concurrently for the requested dates")

	// Lifecycle errors
	ErrInvalidStatus    = errors.New("illegal status transition")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrCannotCancel     = errors.New("reservation has already checked out")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUnitNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInactiveUnit) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInvalidGuests) ||
		errors.Is(err, ErrInvalidUnitID) ||
		errors.Is(err, ErrInvalidReservationID) ||
		errors.Is(err, ErrInvalidStatusValue) ||
		errors.Is(err, ErrNotAvailable) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrCannotCancel)
}

// IsConflictError checks if the error is a write-time conflict. A storage
// conflict surfaces to callers the same way as a pre-write availability
// failure.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyBooked)
}
