package schedule

import (
	"fmt"
	"net/http"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/interval"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/apperror"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrResourceNotFound = apperror.New(http.StatusNotFound, "resource not found")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "time slot already booked")
	ErrNoResources      = apperror.New(http.StatusBadRequest, "at least one resource is required")
)

// Booking holds one resource for one half-open time window. A session that
// needs both an instructor and a location holds two bookings sharing the same
// owner ref.
type Booking struct {
	ID           string
	ResourceID   string
	ResourceName string
	ResourceKind resource.Kind
	OwnerRef     string
	StartTime    time.Time
	EndTime      time.Time
	CreatedAt    time.Time
}

// Window returns the booking's time window as an interval value.
func (b *Booking) Window() interval.Interval {
	return interval.Interval{Start: b.StartTime, End: b.EndTime}
}

// ConflictError reports the bookings that collide with a proposed window.
// Callers surface the list so the user can see exactly what is in the way.
type ConflictError struct {
	Conflicts []Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time window conflicts with %d existing booking(s)", len(e.Conflicts))
}

// Filter defines parameters for listing bookings.
type Filter struct {
	ResourceID string
	OwnerRef   string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
