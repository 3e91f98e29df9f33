package domain

import (
	"testing"
	"time"
)

func TestNightsBetween(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"two nights", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), 2},
		{"one night", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), 1},
		{"same day", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 0},
		{"reversed", time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), -2},
		{"time of day ignored", time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC), time.Date(2026, 1, 7, 0, 1, 0, 0, time.UTC), 2},
		{"across month boundary", time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NightsBetween(tt.checkIn, tt.checkOut); got != tt.want {
				t.Errorf("NightsBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsWeekendNight(t *testing.T) {
	// 2026-01-05 is a Monday
	tests := []struct {
		day  int
		want bool
	}{
		{5, false},  // Monday
		{6, false},  // Tuesday
		{7, false},  // Wednesday
		{8, false},  // Thursday
		{9, true},   // Friday
		{10, true},  // Saturday
		{11, false}, // Sunday night is a weekday night
	}

	for _, tt := range tests {
		d := time.Date(2026, 1, tt.day, 0, 0, 0, 0, time.UTC)
		if got := IsWeekendNight(d); got != tt.want {
			t.Errorf("IsWeekendNight(%s) = %v, want %v", d.Weekday(), got, tt.want)
		}
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{100.005, 100.01},
		{100.004, 100.0},
		{66.666, 66.67},
		{0, 0},
		{-10.005, -10.01},
	}

	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReservationStatus_BlocksDates(t *testing.T) {
	blocking := []ReservationStatus{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut}
	for _, s := range blocking {
		if !s.BlocksDates() {
			t.Errorf("%s should block dates", s)
		}
	}
	for _, s := range []ReservationStatus{StatusCancelled, StatusNoShow} {
		if s.BlocksDates() {
			t.Errorf("%s should not block dates", s)
		}
	}
}

func TestReservationStatus_Valid(t *testing.T) {
	for _, s := range []ReservationStatus{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ReservationStatus("archived").Valid() {
		t.Error("unknown status should not be valid")
	}
}
