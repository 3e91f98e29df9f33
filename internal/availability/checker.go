// Package availability decides whether a candidate stay conflicts with
// existing reservations for the same unit.
package availability

import (
	"time"

	"github.com/peakstay/reservation-engine/internal/domain"
)

// Overlaps reports whether two half-open date ranges [inA, outA) and
// [inB, outB) share at least one night.
func Overlaps(inA, outA, inB, outB time.Time) bool {
	return inA.Before(outB) && outA.After(inB)
}

// IsAvailable reports whether the candidate range [checkIn, checkOut) is
// free of conflicts. Reservations whose status does not block dates
// (cancelled, no_show) are excluded from consideration.
func IsAvailable(existing []*domain.Reservation, checkIn, checkOut time.Time) bool {
	in := domain.DateOnly(checkIn)
	out := domain.DateOnly(checkOut)
	for _, r := range existing {
		if !r.Status.BlocksDates() {
			continue
		}
		if Overlaps(in, out, domain.DateOnly(r.CheckInDate), domain.DateOnly(r.CheckOutDate)) {
			return false
		}
	}
	return true
}

// BlockedDates expands every blocking reservation into its individual
// occupied calendar dates within [rangeStart, rangeEnd], for calendar
// rendering. The check-out date itself is not occupied. The result is
// sorted and free of duplicates.
func BlockedDates(existing []*domain.Reservation, rangeStart, rangeEnd time.Time) []time.Time {
	start := domain.DateOnly(rangeStart)
	end := domain.DateOnly(rangeEnd)

	seen := make(map[time.Time]struct{})
	for _, r := range existing {
		if !r.Status.BlocksDates() {
			continue
		}
		day := domain.DateOnly(r.CheckInDate)
		out := domain.DateOnly(r.CheckOutDate)
		for day.Before(out) {
			if !day.Before(start) && !day.After(end) {
				seen[day] = struct{}{}
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if _, ok := seen[day]; ok {
			dates = append(dates, day)
		}
	}
	return dates
}
