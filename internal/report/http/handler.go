package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/course-scheduling-backend/internal/pkg/response"
	"github.com/campusflow/course-scheduling-backend/internal/report"
)

type Handler struct {
	service report.Service
}

func NewHandler(service report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Utilization(c *gin.Context) {
	var query UtilizationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	day, err := time.Parse("2006-01-02", query.Day)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
		return
	}

	utilization, err := h.service.DailyUtilization(c.Request.Context(), query.ResourceIDs, day)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UtilizationResponse, len(utilization))
	for i, u := range utilization {
		items[i] = NewUtilizationResponse(u)
	}
	c.JSON(http.StatusOK, gin.H{"day": query.Day, "resources": items})
}

func (h *Handler) Occupancy(c *gin.Context) {
	var query OccupancyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	occupancy, err := h.service.RosterOccupancy(c.Request.Context(), query.RosterIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OccupancyResponse, len(occupancy))
	for i, o := range occupancy {
		items[i] = NewOccupancyResponse(o)
	}
	c.JSON(http.StatusOK, gin.H{"rosters": items})
}
