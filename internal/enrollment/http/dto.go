package http

import (
	"time"

	"github.com/campusflow/course-scheduling-backend/internal/enrollment"
	"github.com/campusflow/course-scheduling-backend/internal/interval"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/request"
)

// SessionBody is the optional booking proposal checked before admission.
type SessionBody struct {
	ResourceIDs []string  `json:"resource_ids" binding:"required,min=1,dive,uuid"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

type EnrollRequest struct {
	RosterID      string       `json:"roster_id" binding:"required,uuid"`
	ParticipantID string       `json:"participant_id" binding:"required,uuid"`
	Session       *SessionBody `json:"session"`
}

// Validate performs custom validation for EnrollRequest.
func (r *EnrollRequest) Validate() error {
	if r.Session != nil {
		if _, err := interval.New(r.Session.StartTime, r.Session.EndTime); err != nil {
			return err
		}
	}
	return nil
}

type ListQuery struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=enrolled waitlisted withdrawn"`
}

type EnrollmentResponse struct {
	ID               string    `json:"id"`
	RosterID         string    `json:"roster_id"`
	ParticipantID    string    `json:"participant_id"`
	Status           string    `json:"status"`
	WaitlistPosition *int32    `json:"waitlist_position,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewEnrollmentResponse(e *enrollment.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:               e.ID,
		RosterID:         e.RosterID,
		ParticipantID:    e.ParticipantID,
		Status:           string(e.Status),
		WaitlistPosition: e.WaitlistPosition,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
