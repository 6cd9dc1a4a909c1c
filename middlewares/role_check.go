package middlewares

import (
	"fmt"
	"net/http"

	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/utils"
	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route group on a single capability check rather
// than per-handler role comparisons.
func RequireCapability(cap session.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, _ := roleInterface.(string)
		if !session.Allows(role, cap) {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("insufficient permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSuperuser gates the administration surface that only the superuser
// may touch (course CRUD, user management).
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != session.RoleSuperuser {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("superuser access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
