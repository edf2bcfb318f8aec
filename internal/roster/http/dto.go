package http

import (
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/request"
	"github.com/campusflow/course-scheduling-backend/internal/roster"
)

type CreateBody struct {
	Name        string `json:"name" binding:"required"`
	MaxCapacity *int32 `json:"max_capacity" binding:"omitempty,min=1"` // null for unlimited
}

type ListQuery struct {
	request.ListParams
}

type Response struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	MaxCapacity       *int32    `json:"max_capacity"`
	CurrentEnrollment int32     `json:"current_enrollment"`
	WaitlistCount     int32     `json:"waitlist_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewResponse(r *roster.Roster) Response {
	return Response{
		ID:                r.ID,
		Name:              r.Name,
		MaxCapacity:       r.MaxCapacity,
		CurrentEnrollment: r.CurrentEnrollment,
		WaitlistCount:     r.WaitlistCount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
