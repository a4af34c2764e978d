package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
	"github.com/yeremiapane/recipe-costing/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// AuthMiddleware rejects requests without a valid, unrevoked bearer token.
func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.Authenticate(utils.BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, string(services.KindUnauthorized), err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
