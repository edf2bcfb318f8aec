package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/request"
	"github.com/campusflow/course-scheduling-backend/internal/pkg/response"
	"github.com/campusflow/course-scheduling-backend/internal/schedule"
)

type Handler struct {
	service schedule.Service
}

func NewHandler(service schedule.Service) *Handler {
	return &Handler{service: service}
}

// writeError maps service failures to responses, attaching the conflicting
// bookings when registration collided.
func writeError(c *gin.Context, err error) {
	var conflictErr *schedule.ConflictError
	if errors.As(err, &conflictErr) {
		response.Error(c, schedule.ErrTimeConflict.WithDetails(NewConflictList(conflictErr.Conflicts)))
		return
	}
	response.Error(c, err)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	bookings, err := h.service.Register(c.Request.Context(), schedule.RegisterRequest{
		OwnerRef:    body.OwnerRef,
		ResourceIDs: body.ResourceIDs,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusCreated, gin.H{"bookings": items})
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	query.Normalize()

	bookings, total, err := h.service.List(c.Request.Context(), schedule.Filter{
		ResourceID: query.ResourceID,
		OwnerRef:   query.OwnerRef,
		From:       query.From,
		To:         query.To,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, query.Page, query.PageSize, total))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Release(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Conflicts is a dry-run overlap check for one resource: it reports what a
// proposed window would collide with, without booking anything.
func (h *Handler) Conflicts(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var query ConflictQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	conflicts, err := h.service.FindConflicts(c.Request.Context(), uri.ID, query.Start, query.End, query.ExcludeBookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conflicts": NewConflictList(conflicts)})
}
