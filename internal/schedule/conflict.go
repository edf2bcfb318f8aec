package schedule

import (
	"sort"

	"github.com/campusflow/course-scheduling-backend/internal/interval"
)

// FindOverlaps returns every booking in sorted whose window overlaps the
// proposed one, skipping excludeID. The slice must be sorted by start time;
// because stored bookings for one resource never overlap each other, their end
// times are ordered too, so a binary search to the first booking ending after
// window.Start followed by a linear scan while start < window.End visits only
// true candidates.
func FindOverlaps(sorted []Booking, window interval.Interval, excludeID string) []Booking {
	lo := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].EndTime.After(window.Start)
	})

	var overlaps []Booking
	for i := lo; i < len(sorted) && sorted[i].StartTime.Before(window.End); i++ {
		b := sorted[i]
		if b.ID == excludeID {
			continue
		}
		if b.Window().Overlaps(window) {
			overlaps = append(overlaps, b)
		}
	}
	return overlaps
}

// CountOverlapPairs re-checks every pair of bookings for overlap. Stored
// state should never contain conflicts, so an application-path caller never
// needs this; the utilization reporter runs it to surface invariant breaches
// caused by out-of-band writes. The sorted-order assumption of FindOverlaps
// does not hold once the invariant is broken, hence the pairwise form.
func CountOverlapPairs(bookings []Booking) int {
	count := 0
	for i := 0; i < len(bookings); i++ {
		for j := i + 1; j < len(bookings); j++ {
			if bookings[i].Window().Overlaps(bookings[j].Window()) {
				count++
			}
		}
	}
	return count
}
