package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
)

type IngredientController struct {
	Service *services.IngredientService
}

func NewIngredientController(service *services.IngredientService) *IngredientController {
	return &IngredientController{Service: service}
}

func (ic *IngredientController) GetAllIngredients(c *gin.Context) {
	ingredients, err := ic.Service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (ic *IngredientController) GetIngredientByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ingredient, err := ic.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (ic *IngredientController) CreateIngredient(c *gin.Context) {
	var payload services.IngredientPayload
	if !bindJSON(c, &payload) {
		return
	}
	ingredient, err := ic.Service.Create(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (ic *IngredientController) UpdateIngredient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var payload services.IngredientPayload
	if !bindJSON(c, &payload) {
		return
	}
	ingredient, err := ic.Service.Update(c.Request.Context(), id, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (ic *IngredientController) DeleteIngredient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ic.Service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
