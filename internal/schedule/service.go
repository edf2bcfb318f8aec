package schedule

import (
	"context"
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/interval"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
)

type RegisterRequest struct {
	OwnerRef    string
	ResourceIDs []string
	StartTime   time.Time
	EndTime     time.Time
}

type Service interface {
	// FindConflicts scans the resource's bookings and returns every one
	// overlapping the proposed window. An empty result means no conflict.
	FindConflicts(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) ([]Booking, error)

	// Register books the window on every requested resource, both-or-nothing.
	// A collision on any resource fails the whole request with *ConflictError
	// carrying the union of colliding bookings.
	Register(ctx context.Context, req RegisterRequest) ([]*Booking, error)

	// Release removes a booking; releasing an unknown id is a no-op.
	Release(ctx context.Context, bookingID string) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

type service struct {
	repo       Repository
	resService resource.Service
}

func NewService(repo Repository, resService resource.Service) Service {
	return &service{
		repo:       repo,
		resService: resService,
	}
}

func (s *service) FindConflicts(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) ([]Booking, error) {
	if _, err := interval.New(start, end); err != nil {
		return nil, err
	}

	if _, err := s.resService.GetByID(ctx, resourceID); err != nil {
		return nil, ErrResourceNotFound
	}

	return s.repo.ListOverlapping(ctx, resourceID, start, end, excludeBookingID)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) ([]*Booking, error) {
	if _, err := interval.New(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if len(req.ResourceIDs) == 0 {
		return nil, ErrNoResources
	}

	// Validate every resource up front; a missing one fails before any lock.
	ids := dedupe(req.ResourceIDs)
	resources, err := s.resService.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(resources) != len(ids) {
		return nil, ErrResourceNotFound
	}

	bookings := make([]*Booking, 0, len(resources))
	for _, res := range resources {
		bookings = append(bookings, &Booking{
			ResourceID:   res.ID,
			ResourceName: res.Name,
			ResourceKind: res.Kind,
			OwnerRef:     req.OwnerRef,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
		})
	}

	conflicts, err := s.repo.RegisterAll(ctx, bookings)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}
	return bookings, nil
}

func (s *service) Release(ctx context.Context, bookingID string) error {
	return s.repo.Delete(ctx, bookingID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
