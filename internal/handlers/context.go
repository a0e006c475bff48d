package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/models"
	apperrors "github.com/gatherly/gatherly/pkg/errors"
	"github.com/gatherly/gatherly/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUser pulls the authenticated user from the request context. When it
// is absent a 401 response is written and ok is false.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.UserFromContext(c)
	if user == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}
