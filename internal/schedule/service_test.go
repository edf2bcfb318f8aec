package schedule

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/course-scheduling-backend/internal/interval"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
)

// memRepository keeps bookings per resource sorted by start time, mirroring
// what the SQL overlap queries return.
type memRepository struct {
	byResource map[string][]Booking
	nextID     int
}

func newMemRepository() *memRepository {
	return &memRepository{byResource: make(map[string][]Booking)}
}

func (m *memRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	for _, bookings := range m.byResource {
		for _, b := range bookings {
			if b.ID == id {
				return &b, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (m *memRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, bookings := range m.byResource {
		for i := range bookings {
			out = append(out, &bookings[i])
		}
	}
	return out, len(out), nil
}

func (m *memRepository) ListOverlapping(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) ([]Booking, error) {
	w := interval.Interval{Start: start, End: end}
	return FindOverlaps(m.byResource[resourceID], w, excludeBookingID), nil
}

func (m *memRepository) ListForRange(ctx context.Context, resourceIDs []string, start, end time.Time) ([]Booking, error) {
	w := interval.Interval{Start: start, End: end}
	var out []Booking
	for _, id := range resourceIDs {
		out = append(out, FindOverlaps(m.byResource[id], w, "")...)
	}
	return out, nil
}

func (m *memRepository) RegisterAll(ctx context.Context, bookings []*Booking) ([]Booking, error) {
	var conflicts []Booking
	for _, b := range bookings {
		found := FindOverlaps(m.byResource[b.ResourceID], b.Window(), "")
		conflicts = append(conflicts, found...)
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	for _, b := range bookings {
		m.nextID++
		b.ID = fmt.Sprintf("bk-%d", m.nextID)
		b.CreatedAt = time.Now().UTC()
		list := append(m.byResource[b.ResourceID], *b)
		sort.Slice(list, func(i, j int) bool { return list[i].StartTime.Before(list[j].StartTime) })
		m.byResource[b.ResourceID] = list
	}
	return nil, nil
}

func (m *memRepository) Delete(ctx context.Context, id string) error {
	for resID, bookings := range m.byResource {
		for i, b := range bookings {
			if b.ID == id {
				m.byResource[resID] = append(bookings[:i], bookings[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// memResourceService serves a fixed set of resources.
type memResourceService struct {
	resources map[string]*resource.Resource
}

func newMemResourceService(resources ...*resource.Resource) *memResourceService {
	m := &memResourceService{resources: make(map[string]*resource.Resource)}
	for _, r := range resources {
		m.resources[r.ID] = r
	}
	return m
}

func (m *memResourceService) Create(ctx context.Context, req resource.CreateRequest) (*resource.Resource, error) {
	panic("not used in tests")
}

func (m *memResourceService) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return nil, resource.ErrNotFound
}

func (m *memResourceService) GetByIDs(ctx context.Context, ids []string) ([]*resource.Resource, error) {
	var out []*resource.Resource
	for _, id := range ids {
		if r, ok := m.resources[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memResourceService) List(ctx context.Context, filter resource.Filter) ([]*resource.Resource, int, error) {
	return nil, 0, nil
}

func (m *memResourceService) Delete(ctx context.Context, id string) error {
	return nil
}

func hour(h int) time.Time {
	return time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC)
}

func halfPast(h int) time.Time {
	return time.Date(2024, 1, 10, h, 30, 0, 0, time.UTC)
}

func newTestService() (Service, *memRepository) {
	repo := newMemRepository()
	resources := newMemResourceService(
		&resource.Resource{ID: "instructor-1", Name: "Dr. Lin", Kind: resource.KindInstructor},
		&resource.Resource{ID: "room-101", Name: "Room 101", Kind: resource.KindLocation},
	)
	return NewService(repo, resources), repo
}

func TestRegisterAndConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Instructor booked 09:00-10:00.
	first, err := svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-1",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   hour(9),
		EndTime:     hour(10),
	})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.NotEmpty(t, first[0].ID)
	assert.Equal(t, resource.KindInstructor, first[0].ResourceKind)

	// 09:30-10:30 collides and reports the existing booking.
	_, err = svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-2",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   halfPast(9),
		EndTime:     halfPast(10),
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, first[0].ID, conflictErr.Conflicts[0].ID)

	// 10:00-11:00 touches the existing end and is compatible.
	_, err = svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-3",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   hour(10),
		EndTime:     hour(11),
	})
	require.NoError(t, err)
}

func TestRegisterBothOrNothing(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	// Occupy the room 09:00-10:00.
	_, err := svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-1",
		ResourceIDs: []string{"room-101"},
		StartTime:   hour(9),
		EndTime:     hour(10),
	})
	require.NoError(t, err)

	// A session needing both instructor and room fails on the room collision
	// and must not book the instructor either.
	_, err = svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-2",
		ResourceIDs: []string{"instructor-1", "room-101"},
		StartTime:   halfPast(9),
		EndTime:     halfPast(10),
	})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "room-101", conflictErr.Conflicts[0].ResourceID)

	assert.Empty(t, repo.byResource["instructor-1"], "instructor must not be partially booked")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-1",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   hour(10),
		EndTime:     hour(9),
	})
	assert.ErrorIs(t, err, interval.ErrInvalid)

	_, err = svc.Register(ctx, RegisterRequest{
		OwnerRef:  "session-1",
		StartTime: hour(9),
		EndTime:   hour(10),
	})
	assert.ErrorIs(t, err, ErrNoResources)

	_, err = svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-1",
		ResourceIDs: []string{"ghost"},
		StartTime:   hour(9),
		EndTime:     hour(10),
	})
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestFindConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-1",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   hour(9),
		EndTime:     hour(10),
	})
	require.NoError(t, err)

	conflicts, err := svc.FindConflicts(ctx, "instructor-1", halfPast(9), halfPast(10), "")
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)

	conflicts, err = svc.FindConflicts(ctx, "instructor-1", hour(10), hour(11), "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, err = svc.FindConflicts(ctx, "ghost", hour(9), hour(10), "")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestReleaseIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-1",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   hour(9),
		EndTime:     hour(10),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, created[0].ID))
	// Releasing again is a no-op.
	require.NoError(t, svc.Release(ctx, created[0].ID))

	// The slot is free again.
	_, err = svc.Register(ctx, RegisterRequest{
		OwnerRef:    "session-2",
		ResourceIDs: []string{"instructor-1"},
		StartTime:   hour(9),
		EndTime:     hour(10),
	})
	require.NoError(t, err)
}

func TestNoDoubleBookingAfterAnySequence(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	// A mix of compatible and colliding proposals; failures must not leave
	// partial state behind.
	proposals := []struct{ startH, endH int }{
		{9, 10}, {9, 11}, {10, 11}, {10, 12}, {11, 12}, {8, 13}, {13, 14},
	}
	for i, p := range proposals {
		_, _ = svc.Register(ctx, RegisterRequest{
			OwnerRef:    fmt.Sprintf("session-%d", i),
			ResourceIDs: []string{"instructor-1"},
			StartTime:   hour(p.startH),
			EndTime:     hour(p.endH),
		})
	}

	stored := repo.byResource["instructor-1"]
	require.NotEmpty(t, stored)
	assert.Zero(t, CountOverlapPairs(stored), "stored bookings must never overlap")
}
