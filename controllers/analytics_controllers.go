package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
	"github.com/yeremiapane/recipe-costing/utils"
)

type AnalyticsController struct {
	Service *services.AnalyticsService
}

func NewAnalyticsController(service *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: service}
}

// options reads ?target_markup= and ?period=, answering 400 on bad values.
func (ac *AnalyticsController) options(c *gin.Context) (services.AnalyticsOptions, bool) {
	opts := services.AnalyticsOptions{TargetMarkup: ac.Service.DefaultTarget()}

	target, err := utils.ParseNumber(c.Query("target_markup"))
	if err != nil || (target.Set && !target.Value.IsPositive()) {
		utils.RespondFieldError(c, http.StatusBadRequest, string(services.KindValidation), "target_markup", "target_markup must be a number greater than 0")
		return opts, false
	}
	if target.Set {
		opts.TargetMarkup = target.Float()
	}

	months, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		respondServiceError(c, err)
		return opts, false
	}
	opts.PeriodMonths = months
	return opts, true
}

func (ac *AnalyticsController) GetReport(c *gin.Context) {
	opts, ok := ac.options(c)
	if !ok {
		return
	}
	report, err := ac.Service.Report(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (ac *AnalyticsController) GetPriorities(c *gin.Context) {
	opts, ok := ac.options(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.RespondFieldError(c, http.StatusBadRequest, string(services.KindValidation), "limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	priorities, err := ac.Service.Priorities(c.Request.Context(), opts, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, priorities)
}
