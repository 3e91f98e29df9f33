// Package lifecycle is the reservation state machine. It mutates the
// in-memory reservation only; persistence and side effects belong to the
// orchestrating service.
package lifecycle

import (
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

// CheckIn records guest arrival. Legal only from pending or confirmed.
func CheckIn(r *domain.Reservation, staffID string, now time.Time) error {
	if r.Status != domain.StatusPending && r.Status != domain.StatusConfirmed {
		return domain.ErrInvalidStatus
	}
	r.Status = domain.StatusCheckedIn
	r.CheckedInAt = &now
	r.CheckedInBy = staffID
	return nil
}

// CheckOut records guest departure. Legal only from checked_in.
func CheckOut(r *domain.Reservation, staffID string, now time.Time) error {
	if r.Status != domain.StatusCheckedIn {
		return domain.ErrInvalidStatus
	}
	r.Status = domain.StatusCheckedOut
	r.CheckedOutAt = &now
	r.CheckedOutBy = staffID
	return nil
}

// Cancel marks the reservation cancelled. Cancellation is terminal but
// never a physical delete. Illegal once the stay has checked out.
func Cancel(r *domain.Reservation, reason string, now time.Time) error {
	if r.Status == domain.StatusCancelled {
		return domain.ErrAlreadyCancelled
	}
	if r.Status == domain.StatusCheckedOut {
		return domain.ErrCannotCancel
	}
	r.Status = domain.StatusCancelled
	r.CancelledAt = &now
	r.CancellationReason = reason
	return nil
}

// Override is the administrative escape hatch for manual staff
// corrections. It validates only that the target status exists, not the
// transition; callers are responsible for auditing the prior and new
// status. Automated flows must use the guarded transitions above.
func Override(r *domain.Reservation, newStatus domain.ReservationStatus) (domain.ReservationStatus, error) {
	if !newStatus.Valid() {
		return r.Status, domain.ErrInvalidStatusValue
	}
	prior := r.Status
	r.Status = newStatus
	return prior, nil
}
