package domain

import (
	"math"
	"time"
)

// ReservationStatus represents the lifecycle stage of a reservation
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusNoShow     ReservationStatus = "no_show"
)

// String returns the string representation of the status
func (s ReservationStatus) String() string {
	return string(s)
}

// Valid reports whether the status is one of the known lifecycle statuses
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// BlocksDates reports whether a reservation in this status occupies its
// unit's calendar. Cancelled and no-show stays free the dates.
func (s ReservationStatus) BlocksDates() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// PaymentStatus represents how much of the reservation has been settled
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentPaid        PaymentStatus = "paid"
	PaymentRefunded    PaymentStatus = "refunded"
)

// Reservation represents a chalet stay
type Reservation struct {
	ID            string
	Number        string
	UnitID        string
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	CheckInDate   time.Time
	CheckOutDate  time.Time
	Guests        int
	Nights        int
	BaseAmount    float64
	AddOnsAmount  float64
	DepositAmount float64
	TotalAmount   float64
	Status        ReservationStatus
	PaymentStatus PaymentStatus
	Notes         string

	// AddOns holds the pricing snapshot captured at booking time.
	// Never re-derived from the live catalog.
	AddOns []AddOnLine

	CheckedInAt        *time.Time
	CheckedInBy        string
	CheckedOutAt       *time.Time
	CheckedOutBy       string
	CancelledAt        *time.Time
	CancellationReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddOnLine is an immutable per-reservation snapshot of a catalog add-on
type AddOnLine struct {
	AddOnID   string
	Name      string
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

// IsPending returns true if the reservation has not been confirmed yet
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// IsCheckedIn returns true if the guest is currently on site
func (r *Reservation) IsCheckedIn() bool {
	return r.Status == StatusCheckedIn
}

// IsCancelled returns true if the reservation was cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// IsCheckedOut returns true if the stay has completed
func (r *Reservation) IsCheckedOut() bool {
	return r.Status == StatusCheckedOut
}

// RoundCents rounds a monetary amount to two decimal places.
// Rounding happens once, at the point the amount is stored; nightly
// prices are summed unrounded first to avoid cumulative drift.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateOnly truncates a timestamp to its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts the nights in the half-open range [checkIn, checkOut)
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(DateOnly(checkOut).Sub(DateOnly(checkIn)) / (24 * time.Hour))
}

// IsWeekendNight reports whether the night starting on the given date is
// charged at the weekend rate. Friday and Saturday nights are weekend nights.
func IsWeekendNight(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Friday || wd == time.Saturday
}
