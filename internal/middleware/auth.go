package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/taskflow/marketplace-api/internal/constants"
	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/models"
)

// RequireAuth ensures the request carries an authenticated session and puts
// the user's ID and role into the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID, ok := session.Get(constants.SessionKeyUserID).(uint64)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		roleValue, _ := session.Get(constants.SessionKeyUserRole).(string)
		role, ok := models.ParseRole(roleValue)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyUserRole, role)
		c.Next()
	}
}

// RequireRole restricts a route to the given roles. Must run after
// RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, "")
		c.Abort()
	}
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) uint64 {
	id, _ := c.Get(constants.ContextKeyUserID)
	userID, _ := id.(uint64)
	return userID
}

// GetUserRole returns the authenticated user's role from the request context.
func GetUserRole(c *gin.Context) models.Role {
	value, _ := c.Get(constants.ContextKeyUserRole)
	role, _ := value.(models.Role)
	return role
}
