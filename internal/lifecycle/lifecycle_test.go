package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

func reservation(status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:     "res-001",
		Status: status,
	}
}

func TestCheckIn(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		status  domain.ReservationStatus
		wantErr error
	}{
		{"from pending", domain.StatusPending, nil},
		{"from confirmed", domain.StatusConfirmed, nil},
		{"from checked_in", domain.StatusCheckedIn, domain.ErrInvalidStatus},
		{"from checked_out", domain.StatusCheckedOut, domain.ErrInvalidStatus},
		{"from cancelled", domain.StatusCancelled, domain.ErrInvalidStatus},
		{"from no_show", domain.StatusNoShow, domain.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservation(tt.status)
			err := CheckIn(r, "staff-001", now)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CheckIn() error = %v, wantErr %v", err, tt.wantErr)
				}
				if r.Status != tt.status {
					t.Errorf("status mutated on failed transition: %v", r.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("CheckIn() unexpected error = %v", err)
			}
			if r.Status != domain.StatusCheckedIn {
				t.Errorf("status = %v, want checked_in", r.Status)
			}
			if r.CheckedInAt == nil || !r.CheckedInAt.Equal(now) {
				t.Errorf("CheckedInAt = %v, want %v", r.CheckedInAt, now)
			}
			if r.CheckedInBy != "staff-001" {
				t.Errorf("CheckedInBy = %q, want staff-001", r.CheckedInBy)
			}
		})
	}
}

func TestCheckOut(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		status  domain.ReservationStatus
		wantErr error
	}{
		{"from checked_in", domain.StatusCheckedIn, nil},
		{"from pending", domain.StatusPending, domain.ErrInvalidStatus},
		{"from confirmed", domain.StatusConfirmed, domain.ErrInvalidStatus},
		{"from checked_out", domain.StatusCheckedOut, domain.ErrInvalidStatus},
		{"from cancelled", domain.StatusCancelled, domain.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservation(tt.status)
			err := CheckOut(r, "staff-002", now)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CheckOut() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("CheckOut() unexpected error = %v", err)
			}
			if r.Status != domain.StatusCheckedOut {
				t.Errorf("status = %v, want checked_out", r.Status)
			}
			if r.CheckedOutAt == nil || !r.CheckedOutAt.Equal(now) {
				t.Errorf("CheckedOutAt = %v, want %v", r.CheckedOutAt, now)
			}
			if r.CheckedOutBy != "staff-002" {
				t.Errorf("CheckedOutBy = %q, want staff-002", r.CheckedOutBy)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		status  domain.ReservationStatus
		wantErr error
	}{
		{"from pending", domain.StatusPending, nil},
		{"from confirmed", domain.StatusConfirmed, nil},
		{"from checked_in", domain.StatusCheckedIn, nil},
		{"from no_show", domain.StatusNoShow, nil},
		{"from cancelled", domain.StatusCancelled, domain.ErrAlreadyCancelled},
		{"from checked_out", domain.StatusCheckedOut, domain.ErrCannotCancel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservation(tt.status)
			err := Cancel(r, "guest request", now)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Cancel() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Cancel() unexpected error = %v", err)
			}
			if r.Status != domain.StatusCancelled {
				t.Errorf("status = %v, want cancelled", r.Status)
			}
			if r.CancelledAt == nil || !r.CancelledAt.Equal(now) {
				t.Errorf("CancelledAt = %v, want %v", r.CancelledAt, now)
			}
			if r.CancellationReason != "guest request" {
				t.Errorf("CancellationReason = %q, want guest request", r.CancellationReason)
			}
		})
	}
}

func TestOverride(t *testing.T) {
	tests := []struct {
		name      string
		from      domain.ReservationStatus
		to        domain.ReservationStatus
		wantErr   error
		wantPrior domain.ReservationStatus
	}{
		{"mark no_show from pending", domain.StatusPending, domain.StatusNoShow, nil, domain.StatusPending},
		{"reopen cancelled stay", domain.StatusCancelled, domain.StatusConfirmed, nil, domain.StatusCancelled},
		{"skip straight to checked_out", domain.StatusConfirmed, domain.StatusCheckedOut, nil, domain.StatusConfirmed},
		{"unknown status rejected", domain.StatusPending, domain.ReservationStatus("teleported"), domain.ErrInvalidStatusValue, domain.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservation(tt.from)
			prior, err := Override(r, tt.to)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Override() error = %v, wantErr %v", err, tt.wantErr)
				}
				if r.Status != tt.from {
					t.Errorf("status mutated on failed override: %v", r.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("Override() unexpected error = %v", err)
			}
			if prior != tt.wantPrior {
				t.Errorf("prior = %v, want %v", prior, tt.wantPrior)
			}
			if r.Status != tt.to {
				t.Errorf("status = %v, want %v", r.Status, tt.to)
			}
		})
	}
}
