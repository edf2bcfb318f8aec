package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/reports")
	{
		group.GET("/utilization", h.Utilization)
		group.GET("/occupancy", h.Occupancy)
	}
}
