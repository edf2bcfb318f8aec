package http

import (
	"github.com/campusflow/course-scheduling-backend/internal/report"
)

type UtilizationQuery struct {
	Day         string   `form:"day" binding:"required,datetime=2006-01-02"`
	ResourceIDs []string `form:"resource_ids" binding:"required,min=1,dive,uuid"`
}

type OccupancyQuery struct {
	RosterIDs []string `form:"roster_ids" binding:"required,min=1,dive,uuid"`
}

type UtilizationResponse struct {
	ResourceID    string  `json:"resource_id"`
	ResourceName  string  `json:"resource_name"`
	ResourceKind  string  `json:"resource_kind"`
	BookedHours   float64 `json:"booked_hours"`
	BookingCount  int     `json:"booking_count"`
	ConflictCount int     `json:"conflict_count"`
}

func NewUtilizationResponse(u report.ResourceUtilization) UtilizationResponse {
	return UtilizationResponse{
		ResourceID:    u.ResourceID,
		ResourceName:  u.ResourceName,
		ResourceKind:  string(u.ResourceKind),
		BookedHours:   u.BookedHours,
		BookingCount:  u.BookingCount,
		ConflictCount: u.ConflictCount,
	}
}

type OccupancyResponse struct {
	RosterID          string `json:"roster_id"`
	Name              string `json:"name"`
	MaxCapacity       *int32 `json:"max_capacity,omitempty"`
	CurrentEnrollment int32  `json:"current_enrollment"`
	WaitlistCount     int32  `json:"waitlist_count"`
}

func NewOccupancyResponse(o report.RosterOccupancy) OccupancyResponse {
	return OccupancyResponse{
		RosterID:          o.RosterID,
		Name:              o.Name,
		MaxCapacity:       o.MaxCapacity,
		CurrentEnrollment: o.CurrentEnrollment,
		WaitlistCount:     o.WaitlistCount,
	}
}
