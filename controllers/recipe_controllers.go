package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
)

type RecipeController struct {
	Service *services.RecipeService
}

func NewRecipeController(service *services.RecipeService) *RecipeController {
	return &RecipeController{Service: service}
}

// GetAllRecipes lists recipes, most recently updated first unless ?sort=name.
func (rc *RecipeController) GetAllRecipes(c *gin.Context) {
	recipes, err := rc.Service.List(c.Request.Context(), strings.ToLower(c.Query("sort")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (rc *RecipeController) GetRecipeByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	recipe, err := rc.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	var payload services.RecipePayload
	if !bindJSON(c, &payload) {
		return
	}
	recipe, err := rc.Service.Create(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var payload services.RecipePayload
	if !bindJSON(c, &payload) {
		return
	}
	recipe, err := rc.Service.Update(c.Request.Context(), id, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (rc *RecipeController) UpdateAvailability(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var payload services.AvailabilityPayload
	if !bindJSON(c, &payload) {
		return
	}
	recipe, err := rc.Service.SetAvailability(c.Request.Context(), id, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := rc.Service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RecomputeAll rewrites stored derived figures after ingredient costs were
// changed outside the API.
func (rc *RecipeController) RecomputeAll(c *gin.Context) {
	n, err := rc.Service.RecomputeAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (rc *RecipeController) GetMenu(c *gin.Context) {
	recipes, err := rc.Service.ListMenu(c.Request.Context(), strings.ToLower(c.Param("channel")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}
