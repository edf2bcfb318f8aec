package http

import (
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/request"
	"github.com/campusflow/course-scheduling-backend/internal/resource"
)

type CreateBody struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required,oneof=instructor location"`
}

type ListQuery struct {
	request.ListParams
	Kind string `form:"kind" binding:"omitempty,oneof=instructor location"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResponse(r *resource.Resource) Response {
	return Response{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      string(r.Kind),
		CreatedAt: r.CreatedAt,
	}
}

// ResourceTag is the compact resource reference embedded in other responses.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}
