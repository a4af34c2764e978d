package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/utils"
)

// RoleCheck lets through requests whose authenticated role is one of roles.
// It must run after AuthMiddleware.
func RoleCheck(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}
		utils.RespondError(c, http.StatusForbidden, "forbidden", errors.New("this action needs one of the roles: "+strings.Join(roles, ", ")))
	}
}

