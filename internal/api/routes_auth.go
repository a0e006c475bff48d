package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, svcs Services, requireAuth gin.HandlerFunc) {
	authHandler := handlers.NewAuthHandler(svcs.Auth)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Authenticated auth routes
	protected := r.Group("/api/auth")
	protected.Use(requireAuth)
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
	}
}
