package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/handlers"
	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/services"
)

// Services groups the application services a router needs. Everything is
// constructed explicitly at startup and passed in here.
type Services struct {
	Sessions *iauth.SessionService
	Auth     *services.AuthService
	Events   *services.EventService
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if svcs.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if svcs.Auth == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}
	if svcs.Events == nil {
		return nil, fmt.Errorf("event service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	// Operational endpoints (public)
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(svcs.Sessions)

	registerAuthRoutes(r, svcs, requireAuth)
	registerEventRoutes(r, svcs, requireAuth)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
