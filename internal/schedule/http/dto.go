package http

import (
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/interval"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/request"
	resHttp "github.com/campusflow/course-scheduling-backend/internal/resource/http"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
)

type CreateBookingRequest struct {
	OwnerRef    string    `json:"owner_ref" binding:"required"`
	ResourceIDs []string  `json:"resource_ids" binding:"required,min=1,dive,uuid"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if _, err := interval.New(r.StartTime, r.EndTime); err != nil {
		return err
	}
	return nil
}

type ConflictQuery struct {
	Start            time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End              time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExcludeBookingID string    `form:"exclude_booking_id" binding:"omitempty,uuid"`
}

type ListQuery struct {
	request.ListParams
	ResourceID string     `form:"resource_id" binding:"omitempty,uuid"`
	OwnerRef   string     `form:"owner_ref"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type BookingResponse struct {
	ID        string              `json:"id"`
	Resource  resHttp.ResourceTag `json:"resource"`
	OwnerRef  string              `json:"owner_ref"`
	StartTime time.Time           `json:"start_time"`
	EndTime   time.Time           `json:"end_time"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewBookingResponse(b *schedule.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID,
		Resource: resHttp.ResourceTag{
			ID:   b.ResourceID,
			Name: b.ResourceName,
			Kind: string(b.ResourceKind),
		},
		OwnerRef:  b.OwnerRef,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		CreatedAt: b.CreatedAt,
	}
}

// NewConflictList renders the colliding bookings carried by a ConflictError,
// giving the client enough to explain exactly what is in the way.
func NewConflictList(conflicts []schedule.Booking) []BookingResponse {
	out := make([]BookingResponse, len(conflicts))
	for i := range conflicts {
		out[i] = NewBookingResponse(&conflicts[i])
	}
	return out
}
