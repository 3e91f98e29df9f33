package availability

import (
	"testing"
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(status domain.ReservationStatus, in, out time.Time) *domain.Reservation {
	return &domain.Reservation{
		ID:           "res-" + string(status),
		UnitID:       "unit-001",
		CheckInDate:  in,
		CheckOutDate: out,
		Status:       status,
	}
}

func TestOverlaps(t *testing.T) {
	jan := func(d int) time.Time { return date(2026, 1, d) }

	tests := []struct {
		name string
		inA  time.Time
		outA time.Time
		inB  time.Time
		outB time.Time
		want bool
	}{
		{"identical ranges", jan(10), jan(12), jan(10), jan(12), true},
		{"partial overlap", jan(11), jan(13), jan(10), jan(12), true},
		{"contained range", jan(10), jan(15), jan(11), jan(12), true},
		{"back to back, A first", jan(8), jan(10), jan(10), jan(12), false},
		{"back to back, B first", jan(12), jan(14), jan(10), jan(12), false},
		{"disjoint", jan(1), jan(3), jan(10), jan(12), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.inA, tt.outA, tt.inB, tt.outB); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	jan := func(d int) time.Time { return date(2026, 1, d) }

	tests := []struct {
		name     string
		existing []*domain.Reservation
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{
			name:     "no existing reservations",
			checkIn:  jan(10),
			checkOut: jan(12),
			want:     true,
		},
		{
			name:     "confirmed stay blocks overlapping request",
			existing: []*domain.Reservation{stay(domain.StatusConfirmed, jan(10), jan(12))},
			checkIn:  jan(11),
			checkOut: jan(13),
			want:     false,
		},
		{
			name:     "cancelled stay with same dates does not block",
			existing: []*domain.Reservation{stay(domain.StatusCancelled, jan(10), jan(12))},
			checkIn:  jan(11),
			checkOut: jan(13),
			want:     true,
		},
		{
			name:     "no-show stay does not block",
			existing: []*domain.Reservation{stay(domain.StatusNoShow, jan(10), jan(12))},
			checkIn:  jan(10),
			checkOut: jan(12),
			want:     true,
		},
		{
			name:     "new check-in on existing check-out day is allowed",
			existing: []*domain.Reservation{stay(domain.StatusCheckedIn, jan(10), jan(12))},
			checkIn:  jan(12),
			checkOut: jan(14),
			want:     true,
		},
		{
			name:     "new check-out on existing check-in day is allowed",
			existing: []*domain.Reservation{stay(domain.StatusPending, jan(12), jan(14))},
			checkIn:  jan(10),
			checkOut: jan(12),
			want:     true,
		},
		{
			name: "one blocking stay among cancelled ones",
			existing: []*domain.Reservation{
				stay(domain.StatusCancelled, jan(10), jan(12)),
				stay(domain.StatusPending, jan(11), jan(13)),
			},
			checkIn:  jan(12),
			checkOut: jan(14),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAvailable(tt.existing, tt.checkIn, tt.checkOut); got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlockedDates(t *testing.T) {
	jan := func(d int) time.Time { return date(2026, 1, d) }

	existing := []*domain.Reservation{
		stay(domain.StatusConfirmed, jan(10), jan(12)),  // blocks 10, 11
		stay(domain.StatusCheckedIn, jan(11), jan(14)),  // blocks 11, 12, 13
		stay(domain.StatusCancelled, jan(20), jan(25)),  // ignored
		stay(domain.StatusPending, jan(28), date(2026, 2, 2)), // blocks 28..31 in range
	}

	got := BlockedDates(existing, jan(1), jan(31))

	want := []time.Time{
		jan(10), jan(11), jan(12), jan(13),
		jan(28), jan(29), jan(30), jan(31),
	}
	if len(got) != len(want) {
		t.Fatalf("BlockedDates() returned %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("BlockedDates()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBlockedDates_CheckOutDayNotBlocked(t *testing.T) {
	jan := func(d int) time.Time { return date(2026, 1, d) }
	got := BlockedDates([]*domain.Reservation{stay(domain.StatusConfirmed, jan(10), jan(12))}, jan(1), jan(31))
	for _, d := range got {
		if d.Equal(jan(12)) {
			t.Error("check-out date must not appear in blocked dates")
		}
	}
}
