package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/enrollments")
	{
		group.POST("", h.Enroll)
		group.GET("/:id", h.Get)
		group.POST("/:id/withdraw", h.Withdraw)
	}

	// Roster-scoped views live under /rosters.
	g.GET("/rosters/:id/enrollments", h.ListByRoster)
	g.GET("/rosters/:id/waitlist", h.Waitlist)
}
