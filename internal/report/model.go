package report

import (
	"github.com/campusflow/course-scheduling-backend/internal/resource"
)

// ResourceUtilization is one resource's occupancy for a single day.
// ConflictCount is recomputed from the stored bookings; it is zero unless an
// out-of-band write bypassed the conflict detector.
type ResourceUtilization struct {
	ResourceID    string
	ResourceName  string
	ResourceKind  resource.Kind
	BookedHours   float64
	BookingCount  int
	ConflictCount int
}

// RosterOccupancy is a read-only capacity snapshot for one roster.
type RosterOccupancy struct {
	RosterID          string
	Name              string
	MaxCapacity       *int32 // nil for unlimited
	CurrentEnrollment int32
	WaitlistCount     int32
}
