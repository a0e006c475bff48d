package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly/internal/handlers"
)

func registerEventRoutes(r *gin.Engine, svcs Services, requireAuth gin.HandlerFunc) {
	eventHandler := handlers.NewEventHandler(svcs.Events)

	events := r.Group("/api/events")
	events.Use(requireAuth)
	{
		events.POST("", eventHandler.Create)
		events.GET("/organized", eventHandler.Organized)
		events.GET("/invited", eventHandler.Invited)
		events.GET("/search", eventHandler.Search)
		events.PATCH("/:id", eventHandler.Update)
		events.DELETE("/:id", eventHandler.Delete)
		events.POST("/:id/invite", eventHandler.Invite)
		events.PATCH("/:id/response", eventHandler.Respond)
		events.GET("/:id/participants", eventHandler.Participants)
	}
}
