package report

import (
	"context"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/db"
	"github.com/campusflow/course-scheduling-backend/internal/interval"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
	"github.com/campusflow/course-scheduling-backend/internal/roster"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
)

// BookingSource is the slice of the schedule repository the reporter reads.
type BookingSource interface {
	ListForRange(ctx context.Context, resourceIDs []string, start, end time.Time) ([]schedule.Booking, error)
}

type Service interface {
	// DailyUtilization aggregates booked hours, booking counts and
	// re-validated conflict counts per resource for one UTC day. Pure read,
	// safe under any volume of concurrent calls.
	DailyUtilization(ctx context.Context, resourceIDs []string, day time.Time) ([]ResourceUtilization, error)

	// RosterOccupancy returns the capacity snapshot for the given rosters.
	RosterOccupancy(ctx context.Context, rosterIDs []string) ([]RosterOccupancy, error)
}

type service struct {
	bookings   BookingSource
	resService resource.Service
	rosService roster.Service
}

func NewService(bookings BookingSource, resService resource.Service, rosService roster.Service) Service {
	return &service{
		bookings:   bookings,
		resService: resService,
		rosService: rosService,
	}
}

func (s *service) DailyUtilization(ctx context.Context, resourceIDs []string, day time.Time) ([]ResourceUtilization, error) {
	window := interval.Day(day)

	var resources []*resource.Resource
	var bookings []schedule.Booking
	err := db.ReadRetry(ctx, func(ctx context.Context) error {
		var err error
		if resources, err = s.resService.GetByIDs(ctx, resourceIDs); err != nil {
			return err
		}
		bookings, err = s.bookings.ListForRange(ctx, resourceIDs, window.Start, window.End)
		return err
	})
	if err != nil {
		return nil, err
	}

	byResource := make(map[string][]schedule.Booking, len(resources))
	for _, b := range bookings {
		byResource[b.ResourceID] = append(byResource[b.ResourceID], b)
	}

	out := make([]ResourceUtilization, 0, len(resources))
	for _, res := range resources {
		resBookings := byResource[res.ID]

		var booked time.Duration
		for _, b := range resBookings {
			booked += clip(b.Window(), window).Duration()
		}

		out = append(out, ResourceUtilization{
			ResourceID:    res.ID,
			ResourceName:  res.Name,
			ResourceKind:  res.Kind,
			BookedHours:   booked.Hours(),
			BookingCount:  len(resBookings),
			ConflictCount: schedule.CountOverlapPairs(resBookings),
		})
	}
	return out, nil
}

// clip trims a booking window to the reporting day, so a booking crossing
// midnight only counts its in-day portion.
func clip(w, bounds interval.Interval) interval.Interval {
	if w.Start.Before(bounds.Start) {
		w.Start = bounds.Start
	}
	if w.End.After(bounds.End) {
		w.End = bounds.End
	}
	return w
}

func (s *service) RosterOccupancy(ctx context.Context, rosterIDs []string) ([]RosterOccupancy, error) {
	var rosters []*roster.Roster
	err := db.ReadRetry(ctx, func(ctx context.Context) error {
		var err error
		rosters, err = s.rosService.GetByIDs(ctx, rosterIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]RosterOccupancy, 0, len(rosters))
	for _, ros := range rosters {
		out = append(out, RosterOccupancy{
			RosterID:          ros.ID,
			Name:              ros.Name,
			MaxCapacity:       ros.MaxCapacity,
			CurrentEnrollment: ros.CurrentEnrollment,
			WaitlistCount:     ros.WaitlistCount,
		})
	}
	return out, nil
}
