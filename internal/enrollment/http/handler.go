package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/course-scheduling-backend/internal/enrollment"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/request"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/response"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
	schHttp "github.com/campusflow/course-scheduling-backend/internal/schedule/http"
)

type Handler struct {
	service enrollment.Service
}

func NewHandler(service enrollment.Service) *Handler {
	return &Handler{service: service}
}

// writeError attaches the conflicting bookings when admission failed on a
// schedule collision; everything else flows through the shared mapping.
func writeError(c *gin.Context, err error) {
	var conflictErr *schedule.ConflictError
	if errors.As(err, &conflictErr) {
		response.Error(c, enrollment.ErrScheduleConflict.WithDetails(schHttp.NewConflictList(conflictErr.Conflicts)))
		return
	}
	response.Error(c, err)
}

func (h *Handler) Enroll(c *gin.Context) {
	var body EnrollRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	req := enrollment.EnrollRequest{
		RosterID:      body.RosterID,
		ParticipantID: body.ParticipantID,
	}
	if body.Session != nil {
		req.Session = &enrollment.SessionCheck{
			ResourceIDs: body.Session.ResourceIDs,
			StartTime:   body.Session.StartTime,
			EndTime:     body.Session.EndTime,
		}
	}

	e, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewEnrollmentResponse(e))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewEnrollmentResponse(e))
}

func (h *Handler) Withdraw(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	e, err := h.service.Withdraw(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewEnrollmentResponse(e))
}

// ListByRoster lists a roster's enrollments, optionally filtered by status.
func (h *Handler) ListByRoster(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	query.Normalize()

	enrollments, total, err := h.service.List(c.Request.Context(), enrollment.Filter{
		RosterID: uri.ID,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EnrollmentResponse, len(enrollments))
	for i, e := range enrollments {
		items[i] = NewEnrollmentResponse(e)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, query.Page, query.PageSize, total))
}

// Waitlist returns the roster's waitlist ordered by position.
func (h *Handler) Waitlist(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	enrollments, err := h.service.ListWaitlist(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EnrollmentResponse, len(enrollments))
	for i, e := range enrollments {
		items[i] = NewEnrollmentResponse(e)
	}
	c.JSON(http.StatusOK, gin.H{"waitlist": items})
}
