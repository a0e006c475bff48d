package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/gatherly/gatherly/internal/auth"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/pkg/errors"
	"github.com/gatherly/gatherly/pkg/response"
)

const (
	CtxUserKey   = "authUser"
	CtxUserIDKey = "userID"
	CtxTokenKey  = "authToken"
)

// Auth enforces bearer-token authentication by resolving the credential
// through the session service and stashing the user in the request context.
func Auth(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		user, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			// All resolution failures normalise to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxTokenKey, token)

		c.Next()
	}
}

// UserFromContext returns the authenticated user set by Auth, or nil.
func UserFromContext(c *gin.Context) *models.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// TokenFromContext returns the raw bearer token set by Auth, or "".
func TokenFromContext(c *gin.Context) string {
	v, ok := c.Get(CtxTokenKey)
	if !ok {
		return ""
	}
	token, _ := v.(string)
	return token
}
