package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
	"github.com/yeremiapane/recipe-costing/utils"
)

type AuthController struct {
	Service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{Service: service}
}

func (ac *AuthController) Login(c *gin.Context) {
	var payload services.LoginPayload
	if !bindJSON(c, &payload) {
		return
	}
	result, err := ac.Service.Login(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ac *AuthController) Logout(c *gin.Context) {
	token := utils.BearerToken(c.GetHeader("Authorization"))
	if err := ac.Service.Logout(token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the account behind the request's token.
func (ac *AuthController) Me(c *gin.Context) {
	claims, err := ac.Service.Authenticate(utils.BearerToken(c.GetHeader("Authorization")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user, err := ac.Service.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
